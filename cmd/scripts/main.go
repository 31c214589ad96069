// Command scripts is a developer-only diagnostics CLI for exercising one
// layer of the stack at a time, without standing up a full requester and
// worker pair.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oac1771/bruja/internal/job"
	"github.com/oac1771/bruja/internal/logging"
	"github.com/oac1771/bruja/internal/p2pnode"
)

func main() {
	logging.Init("info", true)
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{Use: "scripts", Short: "bruja diagnostics"}
	root.AddCommand(newP2PCmd())
	root.AddCommand(newWasmtimeCmd())
	return root
}

// newP2PCmd runs a gossip smoke test: the node subscribes to a topic and
// prints every message other peers publish on it. It does not publish
// anything itself.
func newP2PCmd() *cobra.Command {
	var topic string

	cmd := &cobra.Command{
		Use:   "p2p",
		Short: "smoke-test gossip: subscribe to a topic and print everything seen",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			node, err := p2pnode.Build(ctx)
			if err != nil {
				return err
			}
			client, _ := node.Start(ctx)

			id, err := client.LocalPeerID(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("peer id: %s\n", id)

			if err := client.Subscribe(ctx, topic); err != nil {
				return err
			}

			for msg := range client.Gossip() {
				fmt.Printf("[%s] %s\n", msg.NetworkId, msg.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "scripts-smoke-test", "gossip topic to join")
	return cmd
}

// newWasmtimeCmd runs a single wasm export in the sandbox and prints the
// decoded results, independent of the network or ledger layers.
func newWasmtimeCmd() *cobra.Command {
	var (
		path     string
		funcName string
		params   string
	)

	cmd := &cobra.Command{
		Use:   "wasmtime",
		Short: "build and run a single job locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			b := job.NewBuilder()
			j, err := b.Build(path, funcName, job.ParamsFromCSV(params))
			if err != nil {
				return err
			}

			r := job.NewRunner()
			results, err := r.Run(j)
			if err != nil {
				return err
			}
			fmt.Println(results.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "path to wasm module")
	cmd.Flags().StringVar(&funcName, "func-name", "", "exported function to invoke")
	cmd.Flags().StringVar(&params, "params", "", "comma-separated literal parameters")
	cmd.MarkFlagRequired("path")
	cmd.MarkFlagRequired("func-name")
	return cmd
}

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oac1771/bruja/internal/config"
	"github.com/oac1771/bruja/internal/controller"
	"github.com/oac1771/bruja/internal/job"
	"github.com/oac1771/bruja/internal/ledger"
	"github.com/oac1771/bruja/internal/ledger/signer"
	"github.com/oac1771/bruja/internal/logging"
	"github.com/oac1771/bruja/internal/p2pnode"
)

func newSubmitJobCmd(cfg func() config.Config) *cobra.Command {
	var (
		address  string
		path     string
		funcName string
		params   string
	)

	cmd := &cobra.Command{
		Use:   "submit-job",
		Short: "Submit a wasm job to a contract and wait for a worker to accept it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmitJob(cmd.Context(), cfg(), address, path, funcName, params)
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "contract address to submit the job request to")
	cmd.Flags().StringVar(&path, "path", "", "path to the wasm job bytecode")
	cmd.Flags().StringVar(&funcName, "func-name", "", "exported function to invoke")
	cmd.Flags().StringVar(&params, "params", "", "comma-separated literal parameters")
	cmd.MarkFlagRequired("address")
	cmd.MarkFlagRequired("path")
	cmd.MarkFlagRequired("func-name")
	return cmd
}

func runSubmitJob(ctx context.Context, cfg config.Config, address, path, funcName, params string) error {
	log := logging.For("requester.submit-job")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	node, err := p2pnode.Build(ctx)
	if err != nil {
		return err
	}
	nodeClient, nodeDone := node.Start(ctx)

	localID, err := nodeClient.LocalPeerID(ctx)
	if err != nil {
		return err
	}
	log.Info().Str("peer_id", localID.String()).Msg("node joined network")

	s, err := signer.FromSURI(cfg.SURI)
	if err != nil {
		return err
	}

	ledgerClient, err := ledger.Dial(ctx, cfg.URL, cfg.ArtifactFilePath, s)
	if err != nil {
		return err
	}
	defer ledgerClient.Close()

	r := controller.NewRequester(nodeClient, ledgerClient, []byte(address), localID.String())
	return r.Start(ctx, nodeDone, path, funcName, job.ParamsFromCSV(params))
}

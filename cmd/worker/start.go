package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oac1771/bruja/internal/config"
	"github.com/oac1771/bruja/internal/controller"
	"github.com/oac1771/bruja/internal/ledger"
	"github.com/oac1771/bruja/internal/ledger/signer"
	"github.com/oac1771/bruja/internal/logging"
	"github.com/oac1771/bruja/internal/p2pnode"
)

func newStartCmd(cfg func() config.Config) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Join the network and watch for job requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd.Context(), cfg(), address)
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "contract address to watch for job requests")
	cmd.MarkFlagRequired("address")
	return cmd
}

func runStart(ctx context.Context, cfg config.Config, address string) error {
	log := logging.For("worker.start")

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

	w := controller.NewWorker(nodeClient, ledgerClient, []byte(address), localID.String())
	return w.Start(ctx, nodeDone)
}

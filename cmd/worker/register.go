package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oac1771/bruja/internal/config"
	"github.com/oac1771/bruja/internal/ledger"
	"github.com/oac1771/bruja/internal/ledger/scale"
	"github.com/oac1771/bruja/internal/ledger/signer"
	"github.com/oac1771/bruja/internal/logging"
)

func newRegisterCmd(cfg func() config.Config) *cobra.Command {
	var (
		address string
		val     int32
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register this worker's signing account with the catalog contract",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd.Context(), cfg(), address, val)
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "contract address to register with")
	cmd.Flags().Int32Var(&val, "val", 0, "worker capacity value to register")
	cmd.MarkFlagRequired("address")
	return cmd
}

func runRegister(ctx context.Context, cfg config.Config, address string, val int32) error {
	log := logging.For("worker.register")

	s, err := signer.FromSURI(cfg.SURI)
	if err != nil {
		return err
	}

	ledgerClient, err := ledger.Dial(ctx, cfg.URL, cfg.ArtifactFilePath, s)
	if err != nil {
		return err
	}
	defer ledgerClient.Close()

	eventData, err := ledgerClient.Write(ctx, []byte(address), "register_worker", scale.EncodeI32(val))
	if err != nil {
		return err
	}

	var who []byte
	if who, _, err = scale.DecodeBytes(eventData); err != nil {
		return fmt.Errorf("decode WorkerRegistered event: %w", err)
	}
	if !bytes.Equal(who, s.AccountID()) {
		return fmt.Errorf("registered account %x does not match signer %x", who, s.AccountID())
	}

	log.Info().Str("address", address).Int32("val", val).Msg("worker registered")
	return nil
}

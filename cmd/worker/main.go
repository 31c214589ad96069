// Command worker runs the bruja worker role: it watches the ledger for
// job requests and announces acceptance over gossip.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oac1771/bruja/internal/config"
	"github.com/oac1771/bruja/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		logLevel string
		pretty   bool
		suri     string
		artifact string
		url      string
	)

	root := &cobra.Command{
		Use:   "worker",
		Short: "Run the bruja worker node",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(logLevel, pretty)
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&pretty, "pretty", false, "use human-readable console log output")
	root.PersistentFlags().StringVar(&suri, "suri", "", "signer seed URI, defaults to $SURI or //Alice")
	root.PersistentFlags().StringVar(&artifact, "artifact-file-path", "", "contract artifact path, defaults to $ARTIFACT_FILE_PATH")
	root.PersistentFlags().StringVar(&url, "url", "", "ledger websocket URL, defaults to $URL")

	cfg := func() config.Config { return config.New(suri, artifact, url) }

	root.AddCommand(newStartCmd(cfg))
	root.AddCommand(newRegisterCmd(cfg))
	return root
}

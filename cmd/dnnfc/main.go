// Command dnnfc compiles a weighted CNF in DIMACS format into a
// Decision-DNNF, or counts its weighted models directly without building
// one. Grounded on cmd/operator-cli's root-command-plus-subcommands layout.
package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go-dnnf/compiler/internal/telemetry"
)

func main() {
	telemetry.Register(prometheus.DefaultRegisterer)

	var debug bool

	rootCmd := &cobra.Command{
		Use:   "dnnfc",
		Short: "dnnfc",
		Long:  `A knowledge compiler: turns a weighted CNF into a Decision-DNNF, or weighted-model-counts it directly.`,

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				log.SetLevel(log.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newCompileCmd())
	rootCmd.AddCommand(newCountCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go-dnnf/compiler/internal/compiler"
	"github.com/go-dnnf/compiler/internal/satstate/ginisat"
	"github.com/go-dnnf/compiler/internal/telemetry"
)

var (
	countInput         string
	countOrder         string
	countCacheCapacity int
)

func newCountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Weighted-model-count a DIMACS CNF without building a Decision-DNNF",
		RunE:  runCount,
	}

	cmd.Flags().StringVarP(&countInput, "input", "i", "", "path to a DIMACS CNF file")
	if err := cmd.MarkFlagRequired("input"); err != nil {
		log.Fatal(err)
	}
	cmd.Flags().StringVar(&countOrder, "order", "", "comma-separated variable order (default: natural order)")
	cmd.Flags().IntVar(&countCacheCapacity, "cache-capacity", 4096, "component cache bucket count")

	return cmd
}

func runCount(cmd *cobra.Command, args []string) error {
	cnf, root, err := loadInstance(countInput, countOrder)
	if err != nil {
		return err
	}

	sat := ginisat.New(cnf)
	c, err := compiler.New(sat,
		compiler.WithCacheCapacity(countCacheCapacity),
		compiler.WithLogger(log.StandardLogger()),
	)
	if err != nil {
		return err
	}

	result := c.Count(root)

	log.WithField("model_count", result).Info("counted")

	stats := c.CountCacheStats()
	telemetry.UpdateCacheMetrics("count", stats)
	log.WithFields(log.Fields{
		"entries":      stats.Count,
		"memory_bytes": stats.Memory,
		"hit_rate":     stats.HitRate(),
	}).Debug("count cache stats")

	return nil
}

package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go-dnnf/compiler/internal/compiler"
	"github.com/go-dnnf/compiler/internal/nnf"
	"github.com/go-dnnf/compiler/internal/satstate/ginisat"
	"github.com/go-dnnf/compiler/internal/telemetry"
)

var (
	compileInput         string
	compileOrder         string
	compileCacheCapacity int
	compileTrace         bool
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a DIMACS CNF into a Decision-DNNF",
		RunE:  runCompile,
	}

	cmd.Flags().StringVarP(&compileInput, "input", "i", "", "path to a DIMACS CNF file")
	if err := cmd.MarkFlagRequired("input"); err != nil {
		log.Fatal(err)
	}
	cmd.Flags().StringVar(&compileOrder, "order", "", "comma-separated variable order (default: natural order)")
	cmd.Flags().IntVar(&compileCacheCapacity, "cache-capacity", 4096, "component cache bucket count")
	cmd.Flags().BoolVar(&compileTrace, "trace", false, "log every decide/learn event to stderr")

	return cmd
}

func runCompile(cmd *cobra.Command, args []string) error {
	cnf, root, err := loadInstance(compileInput, compileOrder)
	if err != nil {
		return err
	}

	sat := ginisat.New(cnf)
	mgr := nnf.NewManager()
	opts := []compiler.Option{
		compiler.WithNNFManager(mgr),
		compiler.WithCacheCapacity(compileCacheCapacity),
		compiler.WithLogger(log.StandardLogger()),
	}
	if compileTrace {
		opts = append(opts, compiler.WithTracer(compiler.LoggingTracer{Writer: os.Stderr}))
	}
	c, err := compiler.New(sat, opts...)
	if err != nil {
		return err
	}

	node := c.Compile(root)

	count := mgr.CountModels(node, cnf.NumVars)
	f64, _ := count.Float64()

	log.WithFields(log.Fields{
		"decomposable":  mgr.IsDecomposable(node),
		"deterministic": mgr.IsDeterministic(node),
		"model_count":   f64,
	}).Info("compiled")

	nnfStats := c.NNFCacheStats()
	telemetry.UpdateCacheMetrics("nnf", nnfStats)
	log.WithFields(log.Fields{
		"entries":      nnfStats.Count,
		"memory_bytes": nnfStats.Memory,
		"hit_rate":     nnfStats.HitRate(),
	}).Debug("nnf cache stats")

	return nil
}

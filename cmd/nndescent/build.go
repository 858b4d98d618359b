package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vspinu/rnndescent/internal/nnd"
	"github.com/vspinu/rnndescent/pkg/metric"
)

func newBuildCommand() *cobra.Command {
	var (
		k             int
		metricName    string
		rho           float64
		delta         float64
		maxIterations int
		workers       int
		seed          uint64
		lowMemory     bool
		initPath      string
		outPath       string
	)

	cmd := &cobra.Command{
		Use:   "build <data-file>",
		Short: "Build an approximate k-nearest-neighbor graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadMatrix(args[0])
			if err != nil {
				return err
			}

			var init *nnd.NNGraph
			if initPath != "" {
				ig, err := loadIndexGraph(initPath)
				if err != nil {
					return err
				}
				init = nnd.FromIndexGraph(ig)
			}

			logger.Info("starting build", zap.Int("n_points", data.Rows()), zap.Int("k", k))
			g, err := nnd.Build(context.Background(), data, k, init, nnd.BuildOptions{
				Metric:        metric.Tag(metricName),
				RhoSampleRate: rho,
				Delta:         delta,
				MaxIterations: maxIterations,
				Workers:       workers,
				Seed:          seed,
				LowMemory:     lowMemory,
			})
			if err != nil {
				logger.Error("build failed", zap.Error(err))
				return err
			}

			return writeIndexGraph(outPath, g.ToIndexGraph())
		},
	}

	cmd.Flags().IntVar(&k, "k", 20, "number of neighbors per point")
	cmd.Flags().StringVar(&metricName, "metric", "euclidean", "distance metric: euclidean, l2, cosine, manhattan, hamming")
	cmd.Flags().Float64Var(&rho, "rho", 0.5, "candidate sample rate")
	cmd.Flags().Float64Var(&delta, "delta", 0.001, "convergence threshold")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "outer iteration cap, 0 for automatic")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker count, 0 for automatic")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().BoolVar(&lowMemory, "low-memory", false, "use the reduced-memory candidate variant")
	cmd.Flags().StringVar(&initPath, "init", "", "path to a previously written graph to seed the build from")
	cmd.Flags().StringVar(&outPath, "out", "-", "output path, - for stdout")
	return cmd
}

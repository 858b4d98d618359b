package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vspinu/rnndescent/internal/nnd"
	"github.com/vspinu/rnndescent/pkg/metric"
)

func newQueryCommand() *cobra.Command {
	var (
		k             int
		metricName    string
		epsilon       float64
		maxIterations int
		workers       int
		seed          uint64
		gnDegree      int
		initPath      string
		outPath       string
	)

	cmd := &cobra.Command{
		Use:   "query <ref-file> <ref-graph-file> <query-file>",
		Short: "Find approximate nearest neighbors of query points in a reference set",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := loadMatrix(args[0])
			if err != nil {
				return err
			}
			refGraphJSON, err := loadIndexGraph(args[1])
			if err != nil {
				return err
			}
			refGraph := nnd.FromIndexGraph(refGraphJSON)
			query, err := loadMatrix(args[2])
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

			logger.Info("starting query", zap.Int("n_ref", ref.Rows()), zap.Int("n_query", query.Rows()), zap.Int("k", k))
			g, err := nnd.Query(context.Background(), ref, query, refGraph, init, nnd.QueryOptions{
				K:                     k,
				Metric:                metric.Tag(metricName),
				Epsilon:               epsilon,
				MaxIterations:         maxIterations,
				Workers:               workers,
				Seed:                  seed,
				GeneralNeighborDegree: gnDegree,
			})
			if err != nil {
				logger.Error("query failed", zap.Error(err))
				return err
			}

			return writeIndexGraph(outPath, g.ToIndexGraph())
		},
	}

	cmd.Flags().IntVar(&k, "k", 10, "number of neighbors per query point")
	cmd.Flags().StringVar(&metricName, "metric", "euclidean", "distance metric: euclidean, l2, cosine, manhattan, hamming")
	cmd.Flags().Float64Var(&epsilon, "epsilon", 0.1, "convergence threshold as a fraction of k*n_query")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "outer iteration cap, 0 for automatic")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker count, 0 for automatic")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().IntVar(&gnDegree, "gn-degree", 0, "general-neighbor graph degree, 0 for 2*k")
	cmd.Flags().StringVar(&initPath, "init", "", "path to a previously written graph to seed the query from")
	cmd.Flags().StringVar(&outPath, "out", "-", "output path, - for stdout")
	return cmd
}

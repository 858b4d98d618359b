package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vspinu/rnndescent/internal/nnd"
	"github.com/vspinu/rnndescent/pkg/metric"
)

func newDiversifyCommand() *cobra.Command {
	var (
		metricName       string
		pruneProbability float64
		maxDegree        int
		outPath          string
	)

	cmd := &cobra.Command{
		Use:   "diversify <data-file> <graph-file>",
		Short: "Prune dominated edges from a built graph, optionally degree-limiting the result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadMatrix(args[0])
			if err != nil {
				return err
			}
			graphJSON, err := loadIndexGraph(args[1])
			if err != nil {
				return err
			}
			graph := nnd.FromIndexGraph(graphJSON)

			logger.Info("starting diversify", zap.Int("n_points", graph.NPoints), zap.Float64("prune_probability", pruneProbability))
			sg, err := nnd.Diversify(data, graph, metric.Tag(metricName), pruneProbability)
			if err != nil {
				logger.Error("diversify failed", zap.Error(err))
				return err
			}

			if maxDegree > 0 {
				sg = nnd.DegreePrune(sg, maxDegree)
			}

			return writeIndexGraph(outPath, sg.ToIndexGraph())
		},
	}

	cmd.Flags().StringVar(&metricName, "metric", "euclidean", "distance metric: euclidean, l2, cosine, manhattan, hamming")
	cmd.Flags().Float64Var(&pruneProbability, "prune-probability", 1.0, "probability a dominated edge is dropped")
	cmd.Flags().IntVar(&maxDegree, "max-degree", 0, "cap each row to this many neighbors after diversifying, 0 to skip")
	cmd.Flags().StringVar(&outPath, "out", "-", "output path, - for stdout")
	return cmd
}

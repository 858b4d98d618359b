package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vspinu/rnndescent/internal/logging"
)

var (
	logLevel    string
	logFormat   string
	metricsAddr string
	logger      *zap.Logger
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nndescent",
		Short: "Approximate nearest-neighbor-descent graph construction and query",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := logging.DefaultConfig()
			cfg.Level = logLevel
			cfg.Format = logFormat
			l, err := logging.NewLogger(cfg)
			if err != nil {
				return err
			}
			logger = l

			if metricsAddr != "" {
				go serveMetrics(metricsAddr)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format: json or console")
	cmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on, empty to disable")

	cmd.AddCommand(newBuildCommand())
	cmd.AddCommand(newQueryCommand())
	cmd.AddCommand(newDiversifyCommand())
	return cmd
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", zap.Error(err))
	}
}

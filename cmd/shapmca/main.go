// SPDX-License-Identifier: MIT

// Command shapmca runs maximum-covariance analysis for maps of Shapley
// values: it loads the Shapley/predictor covariance matrix, aggregates
// per-example attribution files at covariance resolution, runs the MCA
// engine, and writes all outputs to a chunked labeled array store.
//
// The run is single-shot: it either completes and exits zero, or aborts on
// the first error and exits non-zero. No retries, no partial results.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cyclonewatch/shapmca/covar"
	"github.com/cyclonewatch/shapmca/mca"
	"github.com/cyclonewatch/shapmca/saliency"
)

// config is the whole configuration surface: three required paths plus a
// log level. Passed by value; never mutated after flag parsing.
type config struct {
	shapleyFiles   []string
	covarianceFile string
	outputFile     string
	logLevel       string
}

func newRootCmd() *cobra.Command {
	var cfg config

	cmd := &cobra.Command{
		Use:   "shapmca",
		Short: "Maximum-covariance analysis for Shapley-value maps",
		Long: `shapmca couples CNN Shapley-value attribution maps with the normalized
predictor fields that produced them, via maximum-covariance analysis of
their covariance matrix. Outputs (singular vectors, expansion
coefficients, eigenvalues, regressed maps) go to a chunked array store.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(cfg.logLevel)
			if err != nil {
				return fmt.Errorf("parsing --log-level: %w", err)
			}
			zerolog.SetGlobalLevel(level)

			return run(cfg)
		},
	}

	cmd.Flags().StringSliceVar(&cfg.shapleyFiles, "shapley-files", nil,
		"ordered list of attribution files, one per example set")
	cmd.Flags().StringVar(&cfg.covarianceFile, "covariance-file", "",
		"covariance matrix path (.nc legacy file or .zarr chunked store)")
	cmd.Flags().StringVar(&cfg.outputFile, "output-file", "",
		"output store path; any existing store there is replaced")
	cmd.Flags().StringVar(&cfg.logLevel, "log-level", "info",
		"zerolog level (trace, debug, info, warn, error)")

	for _, name := range []string{"shapley-files", "covariance-file", "output-file"} {
		cobra.CheckErr(cmd.MarkFlagRequired(name))
	}

	return cmd
}

// run wires the pipeline: loader → aggregator → engine → writer. Every
// error propagates unwrapped to the cobra error path.
func run(cfg config) error {
	cov, err := covar.Load(cfg.covarianceFile)
	if err != nil {
		return err
	}
	pixels, _ := cov.Dims()

	shapley, predictor, err := saliency.Aggregate(cfg.shapleyFiles, pixels)
	if err != nil {
		return err
	}
	log.Info().
		Int("examples", shapley.Examples()).
		Int("grid_rows", shapley.Rows()).
		Int("grid_cols", shapley.Cols()).
		Msg("aggregated attribution files")

	res, err := mca.Run(cov, shapley, predictor)
	if err != nil {
		return err
	}

	if err := mca.Write(cfg.outputFile, res); err != nil {
		return err
	}
	log.Info().Str("path", cfg.outputFile).Msg("MCA results written")

	return nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

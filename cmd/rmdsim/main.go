package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"

	"github.com/rpgo/rmd-simulator/internal/api"
	"github.com/rpgo/rmd-simulator/internal/calculation"
	"github.com/rpgo/rmd-simulator/internal/config"
	"github.com/rpgo/rmd-simulator/internal/output"
	"github.com/rpgo/rmd-simulator/internal/store"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "rmdsim",
		Short: "Monte Carlo comparison of retirement drawdown tax strategies",
		Long: `rmdsim simulates retirement-account drawdown strategies under market
and mortality uncertainty, persists the per-trial results, and reports
head-to-head strategy comparisons.`,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newSimulateCmd(),
		newReportCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rmdsim version %s\n", version)
		},
	}
}

func newSimulateCmd() *cobra.Command {
	var (
		configPath string
		dbPath     string
		trials     int
		seed       int64
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the Monte Carlo ensemble and store the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := config.NewInputParser()
			cfg, err := parser.LoadFromFile(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("trials") {
				cfg.Simulation.TrialCount = trials
			}
			if cmd.Flags().Changed("seed") {
				cfg.Simulation.Seed = seed
			}
			if err := parser.Validate(cfg); err != nil {
				return err
			}

			engine := calculation.NewSimulationEngine(cfg)
			if verbose {
				engine.SetLogger(stdLogger{})
			}

			records, err := engine.Run(cmd.Context())
			if err != nil {
				return err
			}

			st, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			runID := store.NewRunID()
			if err := st.SaveRun(cmd.Context(), runID, cfg, records); err != nil {
				return err
			}
			log.Printf("stored %d result records as run %s in %s", len(records), runID, dbPath)

			report, err := buildReport(cmd, st, runID)
			if err != nil {
				return err
			}
			os.Stdout.Write(output.FormatRunReport(report))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "configs/simulation.yaml", "Simulation configuration file")
	cmd.Flags().StringVar(&dbPath, "db", "rmdsim.db", "SQLite database for results")
	cmd.Flags().IntVar(&trials, "trials", 0, "Override configured trial count")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Override configured seed")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log engine progress")
	return cmd
}

func newReportCmd() *cobra.Command {
	var (
		dbPath string
		runID  string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate and print a stored run",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if runID == "" {
				if runID, err = st.LatestRunID(cmd.Context()); err != nil {
					return err
				}
			}

			report, err := buildReport(cmd, st, runID)
			if err != nil {
				return err
			}
			os.Stdout.Write(output.FormatRunReport(report))
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "rmdsim.db", "SQLite database for results")
	cmd.Flags().StringVar(&runID, "run", "", "Run id (default: latest)")
	return cmd
}

func newServeCmd() *cobra.Command {
	var (
		dbPath string
		port   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the item key-value API",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			handler := api.NewHandler(st)
			log.Printf("item API listening on port %s", port)
			return fasthttp.ListenAndServe(":"+port, handler.HandleRequest)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "rmdsim.db", "SQLite database backing the API")
	cmd.Flags().StringVar(&port, "port", "8080", "Listen port")
	return cmd
}

// buildReport assembles summaries, pairwise comparisons and death-age
// buckets for one run.
func buildReport(cmd *cobra.Command, st *store.Store, runID string) (output.RunReport, error) {
	ctx := cmd.Context()

	summaries, err := st.StrategySummaries(ctx, runID)
	if err != nil {
		return output.RunReport{}, err
	}

	var comparisons []store.PairedComparison
	for i := 0; i < len(summaries); i++ {
		for j := i + 1; j < len(summaries); j++ {
			cmp, err := st.ComparePaired(ctx, runID, summaries[i].Strategy, summaries[j].Strategy)
			if err != nil {
				return output.RunReport{}, err
			}
			comparisons = append(comparisons, cmp)
		}
	}

	buckets, err := st.DeathAgeBuckets(ctx, runID)
	if err != nil {
		return output.RunReport{}, err
	}

	return output.RunReport{
		RunID:       runID,
		Summaries:   summaries,
		Comparisons: comparisons,
		Buckets:     buckets,
	}, nil
}

// stdLogger adapts the standard library logger to the engine's Logger.
type stdLogger struct{}

func (stdLogger) Debugf(format string, args ...any) { log.Printf("DEBUG "+format, args...) }
func (stdLogger) Infof(format string, args ...any)  { log.Printf("INFO "+format, args...) }
func (stdLogger) Warnf(format string, args ...any)  { log.Printf("WARN "+format, args...) }
func (stdLogger) Errorf(format string, args ...any) { log.Printf("ERROR "+format, args...) }

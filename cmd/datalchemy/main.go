package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mmrzaf/datalchemy/internal/app"
	"github.com/mmrzaf/datalchemy/internal/assets"
	"github.com/mmrzaf/datalchemy/internal/config"
	"github.com/mmrzaf/datalchemy/internal/domain"
	"github.com/mmrzaf/datalchemy/internal/exec"
	"github.com/mmrzaf/datalchemy/internal/infra/repos/plans"
	"github.com/mmrzaf/datalchemy/internal/infra/repos/runs"
	"github.com/mmrzaf/datalchemy/internal/logging"
	"github.com/mmrzaf/datalchemy/internal/registry"
	"github.com/mmrzaf/datalchemy/internal/validation"
)

var (
	cfg       *config.Config
	plansDir  string
	assetsDir string
	runsDB    string
	dbDSN     string
	logLevel  string
)

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		color.Red("✗ %v", err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:           "datalchemy",
		Short:         "Deterministic synthetic data from a schema and a generation plan",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&plansDir, "plans-dir", cfg.PlansDir, "Plans directory")
	rootCmd.PersistentFlags().StringVar(&assetsDir, "assets-dir", cfg.AssetsDir, "Assets directory")
	rootCmd.PersistentFlags().StringVar(&runsDB, "runs-db", cfg.RunsDBPath, "Runs database path (SQLite)")
	rootCmd.PersistentFlags().StringVar(&dbDSN, "db", cfg.RunsDBDSN, "Runs database DSN (PostgreSQL); overrides --runs-db")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level")

	rootCmd.AddCommand(generateCmd(), validateCmd(), planCmd(), generatorsCmd(), plansCmd(), runsCmd())

	if err := rootCmd.Execute(); err != nil {
		color.Red("✗ %v", err)
		os.Exit(1)
	}
}

func openRunRepo() (runs.Repository, error) {
	var repo runs.Repository
	if dbDSN != "" {
		repo = runs.NewPostgresRepository(dbDSN)
	} else {
		repo = runs.NewSQLiteRepository(runsDB)
	}
	if err := repo.Init(); err != nil {
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}
	return repo, nil
}

func newRegistry() *registry.GeneratorRegistry {
	return registry.DefaultGeneratorRegistry(assets.NewLoader(assetsDir))
}

func engineOptions() exec.Options {
	opts := exec.DefaultOptions()
	opts.OutDir = cfg.OutDir
	opts.Strict = cfg.Strict
	opts.MaxAttemptsRow = cfg.MaxAttemptsRow
	opts.MaxAttemptsTable = cfg.MaxAttemptsTable
	opts.AutoGenerateParents = cfg.AutoGenerateParents
	return opts
}

// newService loads explicit file paths as given; only plans list is
// confined to --plans-dir.
func newService(runRepo runs.Repository, opts exec.Options) *app.RunService {
	return app.NewRunService(plans.NewFileRepository(""), runRepo, newRegistry(), logging.NewLogger(logLevel), opts)
}

type inputFlags struct {
	schemaPath string
	planPath   string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.schemaPath, "schema", "", "Schema file (json|yaml)")
	cmd.Flags().StringVar(&f.planPath, "plan", "", "Plan file (json|yaml)")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("plan")
}

func (f *inputFlags) request() *app.GenerateRequest {
	return &app.GenerateRequest{SchemaPath: f.schemaPath, PlanPath: f.planPath}
}

func generateCmd() *cobra.Command {
	var (
		in     inputFlags
		outDir string
		strict bool
		seed   uint64
		sqlite bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			runRepo, err := openRunRepo()
			if err != nil {
				return err
			}
			defer runRepo.Close()

			opts := engineOptions()
			if outDir != "" {
				opts.OutDir = outDir
			}
			req := in.request()
			req.SQLiteExport = sqlite
			if cmd.Flags().Changed("strict") {
				req.Strict = &strict
			}
			if cmd.Flags().Changed("seed") {
				req.SeedOverride = &seed
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			res, err := newService(runRepo, opts).Generate(ctx, req)
			if res != nil && res.Result != nil {
				printReportSummary(res.Result.Report)
			}
			if err != nil {
				if res != nil && res.Run != nil {
					color.Red("✗ Run %s failed", res.Run.ID)
				}
				return err
			}
			color.Green("✓ Run %s completed", res.Run.ID)
			fmt.Printf("Output: %s\n", res.Result.RunDir)
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default from DATALCHEMY_OUT_DIR)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on unknown ids and exhausted rows")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Override the plan seed")
	cmd.Flags().BoolVar(&sqlite, "sqlite", false, "Also export the tables to dataset.sqlite")
	return cmd
}

func printReportSummary(report *domain.GenerationReport) {
	if report == nil {
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tROWS\tRETRIES")
	for _, t := range report.Tables {
		fmt.Fprintf(w, "%s\t%d\t%d\n", domain.TableKey(t.Schema, t.Table), t.RowsGenerated, t.Retries)
	}
	w.Flush()
	for _, issue := range report.Warnings {
		color.Yellow("⚠ %s: %s", issue.Code, issue.Message)
	}
	for _, issue := range report.Unsupported {
		color.Red("✗ %s: %s", issue.Code, issue.Message)
	}
}

func validateCmd() *cobra.Command {
	var (
		in     inputFlags
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a plan against a schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := in.request()
			if cmd.Flags().Changed("strict") {
				req.Strict = &strict
			}
			if err := newService(nil, engineOptions()).Validate(req); err != nil {
				if p := validation.ErrorPath(err); p != "" {
					color.Red("✗ %s", p)
				}
				return err
			}
			color.Green("✓ Plan '%s' is valid", in.planPath)
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject unknown generator and transform ids")
	return cmd
}

func planCmd() *cobra.Command {
	var (
		in     inputFlags
		format string
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the table generation order and row counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := newService(nil, engineOptions()).Plan(in.request())
			if err != nil {
				return err
			}
			if format == "yaml" {
				data, err := yaml.Marshal(res)
				if err != nil {
					return err
				}
				fmt.Print(string(data))
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tTABLE\tROWS")
			for i, t := range res.Tasks {
				fmt.Fprintf(w, "%d\t%s\t%d\n", i+1, t.Key(), t.Rows)
			}
			w.Flush()
			fmt.Printf("seed=%d strict=%t config_hash=%s\n", res.Seed, res.Strict, res.ConfigHash)
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table|yaml)")
	return cmd
}

func generatorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generators",
		Short: "Inspect the generator catalogue",
	}
	var format string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List generators and transforms",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := newRegistry().Describe()
			if format == "json" {
				return printJSON(infos)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tPARAMS\tPII")
			for _, info := range infos {
				names := make([]string, 0, len(info.Params))
				for _, p := range info.Params {
					names = append(names, p.Key)
				}
				fmt.Fprintf(w, "%s\t%s\t%v\t%v\n", info.ID, info.Kind, names, info.PIITags)
			}
			w.Flush()
			return nil
		},
	}
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")
	cmd.AddCommand(listCmd)
	return cmd
}

func plansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Inspect plan files",
	}
	var format string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List plans in --plans-dir",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := plans.NewFileRepository(plansDir).ListPlans()
			if err != nil {
				return err
			}
			if format == "json" {
				return printJSON(list)
			}
			if len(list) == 0 {
				color.Yellow("No plans found in %s", plansDir)
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tVERSION\tSEED\tTARGETS\tRULES")
			for _, p := range list {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", p.Path, p.PlanVersion, p.Seed, p.Targets, p.Rules)
			}
			w.Flush()
			return nil
		},
	}
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")
	cmd.AddCommand(listCmd)
	return cmd
}

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the run history",
	}

	var (
		limit  int
		status string
		format string
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runRepo, err := openRunRepo()
			if err != nil {
				return err
			}
			defer runRepo.Close()

			list, err := runRepo.List(limit, status)
			if err != nil {
				return err
			}
			if format == "json" {
				return printJSON(list)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tSEED\tPLAN\tSTARTED")
			for _, r := range list {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
					shortID(r.ID), statusLabel(r.Status), r.Seed, r.PlanPath, r.StartedAt.Format("2006-01-02 15:04"))
			}
			w.Flush()
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Limit results")
	listCmd.Flags().StringVar(&status, "status", "", "Filter by status")
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")

	showCmd := &cobra.Command{
		Use:   "show <run_id>",
		Short: "Show run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runRepo, err := openRunRepo()
			if err != nil {
				return err
			}
			defer runRepo.Close()

			run, err := runRepo.Get(args[0])
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(run)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			if len(run.Stats) > 0 {
				var stats domain.RunStats
				if err := json.Unmarshal(run.Stats, &stats); err == nil {
					fmt.Printf("total_rows: %d\nduration_seconds: %.2f\n", stats.TotalRows, stats.DurationSeconds)
				}
			}
			return nil
		},
	}

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func statusLabel(s domain.RunStatus) string {
	switch s {
	case domain.RunStatusSuccess:
		return color.GreenString(string(s))
	case domain.RunStatusFailed:
		return color.RedString(string(s))
	}
	return color.YellowString(string(s))
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

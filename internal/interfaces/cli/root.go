package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/Prologos-Jurimetrics/internal/application/adherence"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/classification"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/harvest"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/maintenance"
	"github.com/turtacn/Prologos-Jurimetrics/internal/config"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration
}

// Harvester clones an adjudicator profile from a case identifier.
type Harvester interface {
	CloneProfile(ctx context.Context, caseID string) *harvest.CloneResult
}

// Classifier relabels pending case records.
type Classifier interface {
	Run(ctx context.Context) (*classification.Result, error)
}

// Scorer evaluates a petition against an adjudicator's history.
type Scorer interface {
	Evaluate(ctx context.Context, adjudicatorID int64, p adherence.Petition) (*adherence.Evaluation, error)
}

// Purger removes duplicate case records.
type Purger interface {
	PurgeDuplicates(ctx context.Context) (*maintenance.PurgeReport, error)
}

// Migrator drives schema migrations.
type Migrator interface {
	Up() error
	Down(steps int) error
	Status() (version uint, dirty bool, err error)
}

// Services is the set of application services a command may need. Fields a
// command does not use may be nil.
type Services struct {
	Harvester  Harvester
	Classifier Classifier
	Scorer     Scorer
	Purger     Purger
	Migrator   Migrator
}

// ServiceFactory opens the stores and builds the services for one command
// run. The returned func releases them.
type ServiceFactory func(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Services, func(), error)

// NewRootCommand creates the root cobra command with all global flags and
// subcommands. factory is invoked lazily by the commands that need storage.
func NewRootCommand(factory ServiceFactory) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "juris",
		Short: "Prologos jurimetrics CLI",
		Long: "juris harvests adjudicator profiles from the public DataJud API, labels\n" +
			"the stored decisions and scores petitions against an adjudicator's history.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./juris.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json, table)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&opts.Timeout, "timeout", 5*time.Minute, "global operation timeout")

	cmd.AddCommand(
		newRouteCmd(),
		newHarvestCmd(factory),
		newClassifyCmd(factory),
		newScoreCmd(factory),
		newPurgeCmd(factory),
		newMigrateCmd(factory),
		newVersionCmd(),
	)
	return cmd
}

// persistentPreRun initializes config and logger, then stores CLIContext.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger, err := initLogger(opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	if opts.NoColor {
		color.NoColor = true
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		OutputFormat: opts.OutputFormat,
		Verbose:      opts.Verbose,
		NoColor:      opts.NoColor,
		Timeout:      opts.Timeout,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// initConfig loads configuration with priority: flag > $JURIS_CONFIG >
// search paths > environment and defaults.
func initConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" || os.Getenv(config.ConfigPathEnv) != "" {
		return config.LoadAuto(opts.ConfigPath)
	}

	searchPaths := []string{"./juris.yaml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".juris", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/juris/config.yaml")

	for _, p := range searchPaths {
		if _, statErr := os.Stat(p); statErr == nil {
			return config.Load(p)
		}
	}
	return config.LoadFromEnv()
}

// initLogger creates a logger configured for CLI usage (output to stderr).
func initLogger(opts *RootOptions) (logging.Logger, error) {
	level := logging.LevelWarn
	switch strings.ToLower(opts.LogLevel) {
	case "debug":
		level = logging.LevelDebug
	case "info":
		level = logging.LevelInfo
	case "error":
		level = logging.LevelError
	}
	if opts.Verbose {
		level = logging.LevelDebug
	}

	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.InvalidParam("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.InvalidParam("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// withServices runs fn with freshly built services under the global timeout.
func withServices(cmd *cobra.Command, factory ServiceFactory, fn func(ctx context.Context, cc *CLIContext, svc *Services) error) error {
	cc, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if factory == nil {
		return errors.Unavailable("command requires service dependencies; ensure configuration is complete")
	}

	ctx := cmd.Context()
	if cc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cc.Timeout)
		defer cancel()
	}

	svc, release, err := factory(ctx, cc.Config, cc.Logger)
	if err != nil {
		return err
	}
	if release != nil {
		defer release()
	}
	return fn(ctx, cc, svc)
}

// Execute is the main entry point for the CLI application.
func Execute(factory ServiceFactory) error {
	rootCmd := NewRootCommand(factory)
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// tableProvider is implemented by results that render as a table.
type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

// PrintResult outputs data in the format specified by CLIContext.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return printJSON(cmd.OutOrStdout(), data)
	}

	switch strings.ToLower(cliCtx.OutputFormat) {
	case "json":
		return printJSON(cmd.OutOrStdout(), data)
	case "table":
		return printTable(cmd.OutOrStdout(), data)
	default:
		return printText(cmd.OutOrStdout(), data)
	}
}

func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printText(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case string:
		fmt.Fprintln(w, v)
	case fmt.Stringer:
		fmt.Fprintln(w, v.String())
	case tableProvider:
		for _, row := range v.TableRows() {
			fmt.Fprintln(w, strings.Join(row, "  "))
		}
	default:
		fmt.Fprintf(w, "%+v\n", v)
	}
	return nil
}

func printTable(w io.Writer, data interface{}) error {
	tp, ok := data.(tableProvider)
	if !ok {
		return printText(w, data)
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader(tp.TableHeaders())
	table.SetAutoWrapText(false)
	table.AppendBulk(tp.TableRows())
	table.Render()
	return nil
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.RedString("Error:"), err.Error())
}

// PrintSuccess writes a formatted success message to stdout.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("OK:"), msg)
}

//Personal.AI order the ending

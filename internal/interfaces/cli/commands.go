package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/Prologos-Jurimetrics/internal/application/adherence"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/classification"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/harvest"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/maintenance"
	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// route
// ─────────────────────────────────────────────────────────────────────────────

type routeView struct{ judiciary.Route }

func (v routeView) TableHeaders() []string {
	return []string{"Court", "Jurisdiction", "Fallback", "Endpoint"}
}

func (v routeView) TableRows() [][]string {
	return [][]string{{v.Court, v.Jurisdiction, strconv.FormatBool(v.Fallback), v.Endpoint}}
}

func newRouteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route <case-id>",
		Short: "Resolve the DataJud endpoint for a case identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			route := judiciary.NewCourtRouter(cc.Config.DataJud.BaseURL).Route(args[0])
			if route.Warning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), color.YellowString("Warning: %s", route.Warning))
			}
			return PrintResult(cmd, routeView{route})
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// harvest
// ─────────────────────────────────────────────────────────────────────────────

type harvestView struct {
	*harvest.CloneResult
	Classification *classification.Result `json:"classification,omitempty"`
}

func (v harvestView) TableHeaders() []string {
	return []string{"Success", "Court", "Adjudicator", "Message"}
}

func (v harvestView) TableRows() [][]string {
	return [][]string{{strconv.FormatBool(v.Success), v.Court, v.AdjudicatorName, v.Message}}
}

func newHarvestCmd(factory ServiceFactory) *cobra.Command {
	var classify bool
	cmd := &cobra.Command{
		Use:   "harvest <case-id>",
		Short: "Clone the profile of the adjudicator behind a case",
		Long: "harvest resolves the court of the case, fetches its decision history\n" +
			"from DataJud and stores the new decisions. With --classify the pending\n" +
			"records are labelled afterwards.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, factory, func(ctx context.Context, cc *CLIContext, svc *Services) error {
				if svc.Harvester == nil {
					return errors.Unavailable("harvester is not configured")
				}
				res := svc.Harvester.CloneProfile(ctx, args[0])
				view := harvestView{CloneResult: res}
				if !res.Success {
					if err := PrintResult(cmd, view); err != nil {
						return err
					}
					return errors.New(errors.ErrCodeHarvestTechnical, res.Message)
				}
				if classify && svc.Classifier != nil {
					out, err := svc.Classifier.Run(ctx)
					if err != nil {
						cc.Logger.Warn("classification after harvest failed", logging.Err(err))
					} else {
						view.Classification = out
					}
				}
				return PrintResult(cmd, view)
			})
		},
	}
	cmd.Flags().BoolVar(&classify, "classify", false, "label pending records after a successful harvest")
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// classify
// ─────────────────────────────────────────────────────────────────────────────

type classifyView struct{ *classification.Result }

func (v classifyView) TableHeaders() []string { return []string{"Scanned", "Updated", "Duration"} }

func (v classifyView) TableRows() [][]string {
	return [][]string{{strconv.Itoa(v.Scanned), strconv.Itoa(v.Updated), v.Duration.String()}}
}

func newClassifyCmd(factory ServiceFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Label every pending case record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, factory, func(ctx context.Context, cc *CLIContext, svc *Services) error {
				if svc.Classifier == nil {
					return errors.Unavailable("classifier is not configured")
				}
				out, err := svc.Classifier.Run(ctx)
				if err != nil {
					return err
				}
				return PrintResult(cmd, classifyView{out})
			})
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// score
// ─────────────────────────────────────────────────────────────────────────────

type scoreView struct{ *adherence.Evaluation }

func (v scoreView) TableHeaders() []string { return []string{"Topic", "Similarity"} }

func (v scoreView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Match.Similarities))
	for _, s := range v.Match.Similarities {
		rows = append(rows, []string{s.Topic, fmt.Sprintf("%.1f%%", s.Score)})
	}
	return rows
}

func (v scoreView) String() string {
	return fmt.Sprintf("%s: %s (%s)", v.Adjudicator.Name, v.Match.Topic, scoreColor(v.Match.Score))
}

// scoreColor paints high adherence green and low adherence red.
func scoreColor(score float64) string {
	s := fmt.Sprintf("%.1f%%", score)
	switch {
	case score >= 70:
		return color.GreenString(s)
	case score >= 40:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

func newScoreCmd(factory ServiceFactory) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "score <adjudicator-id> --file <petition>",
		Short: "Score a petition against an adjudicator's decision history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return errors.InvalidParam("adjudicator id must be a positive integer: " + args[0])
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeBadRequest, "cannot read petition")
			}
			return withServices(cmd, factory, func(ctx context.Context, cc *CLIContext, svc *Services) error {
				if svc.Scorer == nil {
					return errors.Unavailable("adherence scoring is not configured")
				}
				ev, err := svc.Scorer.Evaluate(ctx, id, adherence.Petition{
					Filename: filepath.Base(file),
					Data:     data,
				})
				if err != nil {
					return err
				}
				return PrintResult(cmd, scoreView{ev})
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "petition file (.txt, .md or .html)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// purge-duplicates
// ─────────────────────────────────────────────────────────────────────────────

type purgeView struct{ *maintenance.PurgeReport }

func (v purgeView) String() string {
	return fmt.Sprintf("%d records before, %d after, %d removed", v.Before, v.After, v.Removed)
}

func newPurgeCmd(factory ServiceFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-duplicates",
		Short: "Remove duplicate case records, keeping the oldest of each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, factory, func(ctx context.Context, cc *CLIContext, svc *Services) error {
				if svc.Purger == nil {
					return errors.Unavailable("purge is not configured")
				}
				report, err := svc.Purger.PurgeDuplicates(ctx)
				if err != nil {
					return err
				}
				return PrintResult(cmd, purgeView{report})
			})
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// migrate
// ─────────────────────────────────────────────────────────────────────────────

func newMigrateCmd(factory ServiceFactory) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply or roll back schema migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}
			return withServices(cmd, factory, func(ctx context.Context, cc *CLIContext, svc *Services) error {
				if svc.Migrator == nil {
					return errors.Unavailable("migrator is not configured")
				}
				switch action {
				case "down":
					if err := svc.Migrator.Down(steps); err != nil {
						return err
					}
				case "up":
					if err := svc.Migrator.Up(); err != nil {
						return err
					}
				}
				version, dirty, err := svc.Migrator.Status()
				if err != nil {
					return err
				}
				msg := fmt.Sprintf("schema version %d", version)
				if dirty {
					msg += " (dirty)"
				}
				PrintSuccess(cmd, msg)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "migrations to roll back with down")
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// version
// ─────────────────────────────────────────────────────────────────────────────

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		// version needs neither config nor logger.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "juris %s\ncommit: %s\nbuilt:  %s\n",
				Version, GitCommit, strings.TrimSpace(BuildDate))
			return nil
		},
	}
}

//Personal.AI order the ending

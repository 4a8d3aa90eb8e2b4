package commands

import (
	"fmt"
	"soccer-forecasts/cmd/forecasts-cli/globals"
	"soccer-forecasts/internal/db"
	"soccer-forecasts/internal/historical"
	"soccer-forecasts/internal/logos"
	"soccer-forecasts/internal/runlog"
	"soccer-forecasts/internal/snapshot"
	"soccer-forecasts/lib/chrono"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyFlags struct {
	run    string
	failed bool
	list   int
}

func init() {
	historyCmd.Flags().StringVar(&historyFlags.run, "run", "", "The id of the run to show, defaults to the latest run.")
	historyCmd.Flags().BoolVar(&historyFlags.failed, "failed", false, "Only show failed tasks, with the command that re-runs each.")
	historyCmd.Flags().IntVar(&historyFlags.list, "list", 0, "List the most recent runs instead of the results of one.")
	rootCmd.AddCommand(historyCmd)
}

// rerunCommand returns the invocation that processes just the task of a result again.
func rerunCommand(res db.Result) string {
	args := []string{"forecasts-cli"}
	switch res.Kind {
	case snapshot.Pipeline:
		args = append(args, "snapshot")
	case historical.Pipeline:
		args = append(args, "historical")
	case logos.KindDiscover, logos.KindTeamLogo:
		args = append(args, "logos", "--skip-competitions")
	case logos.KindCompetitionLogo:
		args = append(args, "logos", "--skip-teams")
	default:
		return ""
	}
	if res.Competition != "" {
		args = append(args, "--competition", res.Competition)
	}
	if res.Kind == historical.Pipeline && res.Season != 0 {
		args = append(args, "--season", fmt.Sprint(res.Season))
	}
	return strings.Join(args, " ")
}

func formatUnix(seconds int64) string {
	return time.Unix(seconds, 0).Format(time.DateTime)
}

func printRuns(runs []db.Run) {
	t := NewTable()
	t.AppendHeader(table.Row{"Run", "Pipeline", "Started", "Finished"})
	for _, run := range runs {
		finished := "-"
		if run.FinishedAt.Valid {
			finished = formatUnix(run.FinishedAt.Int64)
		}
		t.AppendRow(table.Row{run.ID, run.Pipeline, formatUnix(run.StartedAt), finished})
	}
	t.Render()
}

func printResults(run db.Run, results []db.Result, failedOnly bool) {
	t := NewTable()
	t.SetTitle(fmt.Sprintf("%s run %s, started %s", run.Pipeline, run.ID, formatUnix(run.StartedAt)))

	header := table.Row{"Kind", "Competition", "Season", "Item", "Status", "Duration", "Error"}
	if failedOnly {
		header = append(header, "Re-run")
	}
	t.AppendHeader(header)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Error", WidthMax: 60},
	})

	for _, res := range results {
		season := ""
		if res.Season != 0 {
			season = fmt.Sprint(res.Season)
		}
		row := table.Row{
			res.Kind,
			res.Competition,
			season,
			res.Item,
			res.Status,
			(time.Duration(res.DurationMs) * time.Millisecond).String(),
			res.Error,
		}
		if failedOnly {
			row = append(row, rerunCommand(res))
		}
		t.AppendRow(row)
	}
	if !run.FinishedAt.Valid {
		t.SetCaption("this run did not finish")
	}
	t.Render()
}

var historyCmd = &cobra.Command{
	Use:   "history [--run <id>] [--failed] [--list <n>]",
	Short: "Shows the results of a previous run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		g := globals.Get(cmd.Context())
		if g.Config.RunLog.Disabled {
			return fmt.Errorf("the run log is disabled in the config")
		}

		database, err := runlog.Open(runlog.Options{
			File:      g.Config.RunLog.File,
			Url:       g.Config.RunLog.Url,
			AuthToken: g.Config.RunLog.AuthToken,
		})
		if err != nil {
			return err
		}
		defer database.Close()
		recorder := runlog.NewRecorder(database, chrono.NewStandardTime())

		ctx := cmd.Context()
		if historyFlags.list > 0 {
			runs, err := recorder.Runs(ctx, historyFlags.list)
			if err != nil {
				return err
			}
			printRuns(runs)
			return nil
		}

		run, err := recorder.Run(ctx, historyFlags.run)
		if err != nil {
			return err
		}
		results, err := recorder.Results(ctx, run.ID, historyFlags.failed)
		if err != nil {
			return err
		}
		printResults(run, results, historyFlags.failed)
		return nil
	},
}

package cmd

import (
	"context"
	"fmt"

	"github.com/safedrive-ia/safedrive/internal/cli"
	"github.com/safedrive-ia/safedrive/internal/view"

	"github.com/spf13/cobra"
)

var flagFatigueLimit int

var fatigueCmd = &cobra.Command{
	Use:   "fatigue",
	Short: "Fatigue alerts per day with eye-closure and alarm summary",
	RunE:  runFatigue,
}

func init() {
	fatigueCmd.Flags().IntVar(&flagFatigueLimit, "limit", 20, "Number of events to list (0 = none)")
	rootCmd.AddCommand(fatigueCmd)
}

func runFatigue(_ *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	progress("Loading fatigue events...")
	v, err := e.loader.Fatigue(context.Background(), filter())
	if err != nil {
		return err
	}
	if ok, err := e.emit(v); ok {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(windowTitle("FATIGUE", v.Window)))
	fmt.Println()

	if !section(v.Section, "fatigue events", "No fatigue alerts in this window.") {
		return nil
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Alerts", cli.FormatCount(v.Summary.Total)},
			{"Mean eyes closed", cli.FormatMean(v.Summary.Mean) + " s"},
			{"Alarms triggered", cli.FormatCount(v.Summary.CountWhere)},
		},
	}))
	fmt.Println()

	printSeries(v.Series)
	fmt.Println()
	printCounts("By alert type", "Alert", v.ByAlert)

	if flagFatigueLimit > 0 {
		fmt.Println()
		if v.DriversSection.Status == view.StatusFailed {
			fmt.Println(cli.RenderFailed("driver names", v.DriversSection.Error))
		}
		rows := v.Events[:min(flagFatigueLimit, len(v.Events))]
		fmt.Print(cli.RenderTable(eventTable("Events", rows, e.loc)))
	}
	fmt.Println()
	return nil
}

package cmd

import (
	"context"
	"fmt"

	"github.com/safedrive-ia/safedrive/internal/cli"
	"github.com/safedrive-ia/safedrive/internal/view"

	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Fleet overview: fatigue trend, top emotions, latest alerts",
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(_ *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	progress("Loading dashboard...")
	d, err := e.loader.Dashboard(context.Background())
	if err != nil {
		return err
	}
	if ok, err := e.emit(d); ok {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(windowTitle("SAFEDRIVE", d.Window)))
	fmt.Println()

	if d.DriversSection.Status == view.StatusFailed {
		fmt.Println(cli.RenderFailed("drivers", d.DriversSection.Error))
	} else {
		fmt.Printf("  Drivers: %s\n", cli.FormatCount(d.DriverCount))
	}
	fmt.Println()

	fmt.Printf("  Fatigue alerts: %s\n\n", cli.FormatCount(d.FatigueTotal))
	if section(d.FatigueSection, "fatigue events", "No fatigue alerts in this window.") {
		printSeries(d.Fatigue)
		fmt.Println()
		fmt.Print(cli.RenderTable(eventTable("Latest alerts", d.Recent, e.loc)))
		if d.RecentNames.Status == view.StatusFailed {
			fmt.Println(cli.RenderFailed("driver names", d.RecentNames.Error))
		}
	}
	fmt.Println()

	fmt.Printf("  Emotions recorded: %s\n\n", cli.FormatCount(d.EmotionTotal))
	if section(d.EmotionsSection, "emotions", "No emotions recorded in this window.") {
		printCounts("Top emotions", "Emotion", d.TopEmotions)
		fmt.Printf("\n  Positive  %s\n", cli.RenderShareBar(d.PositiveShare, 30))
	}
	fmt.Println()
	return nil
}

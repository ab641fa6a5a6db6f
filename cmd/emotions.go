package cmd

import (
	"context"
	"fmt"

	"github.com/safedrive-ia/safedrive/internal/cli"
	"github.com/safedrive-ia/safedrive/internal/view"

	"github.com/spf13/cobra"
)

var (
	flagEmotionPage     int
	flagEmotionByDriver bool
)

var emotionsCmd = &cobra.Command{
	Use:   "emotions",
	Short: "Emotion distribution, positive share and per-driver breakdown",
	RunE:  runEmotions,
}

func init() {
	emotionsCmd.Flags().IntVar(&flagEmotionPage, "page", 1, "Page of the emotion log to list")
	emotionsCmd.Flags().BoolVar(&flagEmotionByDriver, "by-driver", false, "Show the distribution per driver")
	rootCmd.AddCommand(emotionsCmd)
}

func runEmotions(_ *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	f := filter()
	f.Page = flagEmotionPage

	progress("Loading emotions...")
	v, err := e.loader.Emotions(context.Background(), f)
	if err != nil {
		return err
	}
	if ok, err := e.emit(v); ok {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(windowTitle("EMOTIONS", v.Window)))
	fmt.Println()

	if !section(v.Section, "emotions", "No emotions recorded in this window.") {
		return nil
	}

	fmt.Printf("  Recorded     %s\n", cli.FormatCount(v.Distribution.Total))
	fmt.Printf("  Most common  %s\n", v.MostCommon)
	fmt.Printf("  Positive     %s\n\n", cli.RenderShareBar(v.PositiveShare, 30))

	printSeries(v.Series)
	fmt.Println()

	labelWidth := 0
	for _, c := range v.Distribution.Entries {
		labelWidth = max(labelWidth, len([]rune(c.Label)))
	}
	peak := 0
	if len(v.Top) > 0 {
		peak = v.Top[0].Count
	}
	for _, c := range v.Distribution.Entries {
		fmt.Println(cli.RenderHorizontalBar(c.Label, labelWidth, c.Count, peak, barWidth))
	}
	fmt.Println()

	if v.DriversSection.Status == view.StatusFailed {
		fmt.Println(cli.RenderFailed("driver names", v.DriversSection.Error))
	}
	if flagEmotionByDriver {
		for _, g := range v.ByDriver {
			printCounts(g.Group, "Emotion", g.Distribution.Entries)
			fmt.Println()
		}
	}

	fmt.Print(cli.RenderTable(emotionTable("Emotion log", v.Rows.Items, e.loc)))
	fmt.Println(pageFooter(v.Rows))
	fmt.Println()
	return nil
}

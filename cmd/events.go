package cmd

import (
	"context"
	"fmt"

	"github.com/safedrive-ia/safedrive/internal/cli"
	"github.com/safedrive-ia/safedrive/internal/view"

	"github.com/spf13/cobra"
)

var flagEventsPage int

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Paginated fatigue event log, newest first",
	Long: "List fatigue events newest first. With --from and --to only events in " +
		"that range are listed; otherwise the whole log is paginated.",
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().IntVarP(&flagEventsPage, "page", "p", 1, "Page number (clamped to the last page)")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(_ *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	f := filter()
	f.Page = flagEventsPage
	v, err := e.loader.RecentEvents(context.Background(), f)
	if err != nil {
		return err
	}
	if ok, err := e.emit(v); ok {
		return err
	}

	title := "RECENT EVENTS"
	if v.Window != nil {
		title = windowTitle(title, *v.Window)
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()
	if !section(v.Section, "fatigue events", "No fatigue events found.") {
		return nil
	}
	if v.DriversSection.Status == view.StatusFailed {
		fmt.Println(cli.RenderFailed("driver names", v.DriversSection.Error))
	}
	fmt.Print(cli.RenderTable(eventTable("", v.Page.Items, e.loc)))
	fmt.Println(pageFooter(v.Page))
	fmt.Println()
	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/safedrive-ia/safedrive/internal/cli"
	"github.com/safedrive-ia/safedrive/internal/model"
	"github.com/safedrive-ia/safedrive/internal/pipeline"
	"github.com/safedrive-ia/safedrive/internal/source"
	"github.com/safedrive-ia/safedrive/internal/view"

	"github.com/spf13/cobra"
)

var (
	flagDriverSearch string
	flagDriverName   string
	flagDriverEmail  string
	flagDriverYes    bool
)

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "List, inspect and manage drivers",
	RunE:  runDriversList,
}

var driversListCmd = &cobra.Command{
	Use:   "list",
	Short: "List drivers, optionally filtered by --search",
	RunE:  runDriversList,
}

var driversShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Emotion and fatigue analysis for one driver",
	Args:  cobra.ExactArgs(1),
	RunE:  runDriversShow,
}

var driversAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a driver",
	RunE:  runDriversAdd,
}

var driversEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a driver's name or email",
	Args:  cobra.ExactArgs(1),
	RunE:  runDriversEdit,
}

var driversDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a driver with all sessions and events",
	Args:  cobra.ExactArgs(1),
	RunE:  runDriversDelete,
}

func init() {
	driversCmd.PersistentFlags().StringVarP(&flagDriverSearch, "search", "s", "", "Filter by name or email (substring)")

	for _, c := range []*cobra.Command{driversAddCmd, driversEditCmd} {
		c.Flags().StringVar(&flagDriverName, "name", "", "Driver name")
		c.Flags().StringVar(&flagDriverEmail, "email", "", "Driver email")
	}
	driversDeleteCmd.Flags().BoolVarP(&flagDriverYes, "yes", "y", false, "Do not ask for confirmation")

	driversCmd.AddCommand(driversListCmd, driversShowCmd, driversAddCmd, driversEditCmd, driversDeleteCmd)
	rootCmd.AddCommand(driversCmd)
}

func parseDriverID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: driver id %q", pipeline.ErrInvalidArgument, arg)
	}
	return id, nil
}

func runDriversList(_ *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	l := e.loader.Drivers(context.Background(), view.Filter{Search: flagDriverSearch})
	if ok, err := e.emit(l); ok {
		return err
	}

	fmt.Println()
	title := fmt.Sprintf("DRIVERS  %s", cli.FormatCount(l.Total))
	if flagDriverSearch != "" {
		title = fmt.Sprintf("DRIVERS  %d of %d matching %q", len(l.Drivers), l.Total, flagDriverSearch)
	}
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()
	if !section(l.Section, "drivers", "No drivers found.") {
		return nil
	}

	rows := make([][]string, 0, len(l.Drivers))
	for _, d := range l.Drivers {
		rows = append(rows, []string{
			strconv.FormatInt(d.ID, 10),
			d.Name,
			d.Email,
			cli.FormatTime(d.CreatedAt, e.loc),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"ID", "Name", "Email", "Registered"},
		Rows:     rows,
		LeftCols: 4,
	}))
	fmt.Println()
	return nil
}

func runDriversShow(_ *cobra.Command, args []string) error {
	id, err := parseDriverID(args[0])
	if err != nil {
		return err
	}
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	f := filter()
	f.DriverID = id
	progress("Loading driver %d...", id)
	v, err := e.loader.Driver(context.Background(), f)
	if err != nil {
		return err
	}
	if ok, err := e.emit(v); ok {
		return err
	}

	name := v.Driver.Name
	if v.DriverSection.Status == view.StatusFailed {
		name = pipeline.UnknownDriver
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(windowTitle(fmt.Sprintf("DRIVER %d  %s", id, name), v.Window)))
	fmt.Println()
	if v.DriverSection.Status == view.StatusFailed {
		fmt.Println(cli.RenderFailed("driver profile", v.DriverSection.Error))
	} else if v.Driver.Email != "" {
		fmt.Printf("  %s\n", cli.RenderMuted(v.Driver.Email))
	}

	if v.NoSessions {
		fmt.Println(cli.RenderEmpty("This driver has no recorded sessions."))
		fmt.Println()
		return nil
	}
	if v.SessionsSection.Status == view.StatusFailed {
		fmt.Println(cli.RenderFailed("sessions", v.SessionsSection.Error))
		fmt.Println()
		return nil
	}
	fmt.Printf("  Sessions: %s\n\n", cli.FormatCount(v.Sessions))

	fmt.Println("  [Emotions]")
	if section(v.EmotionsSection, "emotions", "No emotions recorded in this window.") {
		fmt.Printf("  Most common  %s\n", v.MostCommon)
		fmt.Printf("  Positive     %s\n\n", cli.RenderShareBar(v.PositiveShare, 30))
		printSeries(v.EmotionSeries)
		fmt.Println()
		printCounts("", "Emotion", v.Emotions.Entries)
	}
	fmt.Println()

	fmt.Println("  [Fatigue]")
	if section(v.FatigueSection, "fatigue events", "No fatigue alerts in this window.") {
		fmt.Printf("  Alerts %s  mean eyes closed %s s  alarms %s\n\n",
			cli.FormatCount(v.FatigueSummary.Total),
			cli.FormatMean(v.FatigueSummary.Mean),
			cli.FormatCount(v.FatigueSummary.CountWhere))
		printSeries(v.FatigueSeries)
	}
	fmt.Println()
	return nil
}

func runDriversAdd(_ *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	d := model.Driver{Name: flagDriverName, Email: flagDriverEmail}
	if d.Name == "" && d.Email == "" && interactive() {
		if err := driverForm(&d).Run(); err != nil {
			return err
		}
	}

	created, err := view.NewAdmin(e.backend, nil).CreateDriver(context.Background(), d)
	if err != nil {
		return err
	}
	if ok, err := e.emit(created); ok {
		return err
	}
	fmt.Printf("  Registered driver %d (%s)\n", created.ID, created.Name)
	return nil
}

func runDriversEdit(cmd *cobra.Command, args []string) error {
	id, err := parseDriverID(args[0])
	if err != nil {
		return err
	}
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := context.Background()
	rows, err := e.backend.Query(ctx, source.From(source.TableDrivers).Eq("driver_id", id))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: %d", view.ErrDriverNotFound, id)
	}
	d := source.DecodeDriver(rows[0])

	nameSet, emailSet := cmd.Flags().Changed("name"), cmd.Flags().Changed("email")
	if nameSet {
		d.Name = flagDriverName
	}
	if emailSet {
		d.Email = flagDriverEmail
	}
	if !nameSet && !emailSet && interactive() {
		if err := driverForm(&d).Run(); err != nil {
			return err
		}
	}

	updated, err := view.NewAdmin(e.backend, nil).UpdateDriver(ctx, d)
	if err != nil {
		return err
	}
	if ok, err := e.emit(updated); ok {
		return err
	}
	fmt.Printf("  Updated driver %d (%s)\n", updated.ID, updated.Name)
	return nil
}

func runDriversDelete(_ *cobra.Command, args []string) error {
	id, err := parseDriverID(args[0])
	if err != nil {
		return err
	}
	if !flagDriverYes {
		if !interactive() {
			return errors.New("refusing to delete without --yes on a non-interactive terminal")
		}
		confirmed, err := confirm(fmt.Sprintf("Delete driver %d with all sessions and events?", id))
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("  Cancelled.")
			return nil
		}
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := view.NewAdmin(e.backend, nil).DeleteDriver(context.Background(), id); err != nil {
		if errors.Is(err, source.ErrNotFound) {
			return fmt.Errorf("%w: %d", view.ErrDriverNotFound, id)
		}
		return err
	}
	fmt.Printf("  Deleted driver %d\n", id)
	return nil
}

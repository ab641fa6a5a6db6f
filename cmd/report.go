package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/safedrive-ia/safedrive/internal/model"
	"github.com/safedrive-ia/safedrive/internal/pipeline"
	"github.com/safedrive-ia/safedrive/internal/view"

	"github.com/spf13/cobra"
)

var (
	flagIncidentDate        string
	flagIncidentTime        string
	flagIncidentLocation    string
	flagIncidentDescription string
	flagIncidentState       string
	flagIncidentDriver      string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "File an incident report",
	Long: "File an incident report. Without flags on a terminal an interactive " +
		"form is shown; otherwise every required field must be passed as a flag.",
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&flagIncidentDate, "date", "", "Incident date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&flagIncidentTime, "time", "", "Incident time (HH:MM)")
	reportCmd.Flags().StringVar(&flagIncidentLocation, "location", "", "Where it happened")
	reportCmd.Flags().StringVar(&flagIncidentDescription, "description", "", "What happened")
	reportCmd.Flags().StringVar(&flagIncidentState, "driver-state", "", "Observed driver state")
	reportCmd.Flags().StringVar(&flagIncidentDriver, "driver", "", "Driver id (optional)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	r := model.IncidentReport{
		IncidentDate: flagIncidentDate,
		IncidentTime: flagIncidentTime,
		Location:     flagIncidentLocation,
		Description:  flagIncidentDescription,
		DriverState:  flagIncidentState,
	}
	driverID := flagIncidentDriver

	if !anyChanged(cmd, "date", "time", "location", "description", "driver-state", "driver") && interactive() {
		if err := incidentForm(&r, &driverID).Run(); err != nil {
			return err
		}
	}
	if s := strings.TrimSpace(driverID); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: driver id %q", pipeline.ErrInvalidArgument, s)
		}
		r.DriverID = &id
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	filed, err := view.NewAdmin(e.backend, nil).FileIncident(context.Background(), r)
	if err != nil {
		return err
	}
	if ok, err := e.emit(filed); ok {
		return err
	}
	fmt.Printf("  Filed incident report %d (%s %s, %s)\n",
		filed.ID, filed.IncidentDate, filed.IncidentTime, filed.Location)
	return nil
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}

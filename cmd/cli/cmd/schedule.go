package cmd

import (
	"maintplane/pkg/api"

	"github.com/spf13/cobra"
)

var (
	scheduleActualDate   string
	scheduleCancelReason string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Close direct schedules of asset types without an approval chain",
}

var scheduleCompleteCmd = &cobra.Command{
	Use:   "complete [schedule_id]",
	Short: "Mark a direct schedule as performed",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		if client == nil {
			return
		}

		ds, err := client.CompleteSchedule(args[0], api.CompleteScheduleRequest{ActualDate: scheduleActualDate})
		if err != nil {
			printAPIError(cmd, err)
			return
		}
		printSchedule(cmd, ds)
	},
}

var scheduleCancelCmd = &cobra.Command{
	Use:   "cancel [schedule_id]",
	Short: "Cancel a direct schedule",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		if client == nil {
			return
		}

		ds, err := client.CancelSchedule(args[0], api.CancelScheduleRequest{Reason: scheduleCancelReason})
		if err != nil {
			printAPIError(cmd, err)
			return
		}
		printSchedule(cmd, ds)
	},
}

func printSchedule(cmd *cobra.Command, ds *api.DirectScheduleResponse) {
	cmd.Printf("%s %sDirect Schedule%s\n", statusIcon(ds.Status), colorBold, colorReset)
	cmd.Println("──────────────────────────────")
	cmd.Printf("%sID:%s          %s\n", colorDim, colorReset, ds.ID)
	cmd.Printf("%sAsset:%s       %s\n", colorDim, colorReset, ds.AssetID)
	cmd.Printf("%sType:%s        %s\n", colorDim, colorReset, ds.MaintenanceTypeID)
	cmd.Printf("%sStatus:%s      %s\n", colorDim, colorReset, colorizeStatus(ds.Status))
	cmd.Printf("%sPlanned:%s     %s\n", colorDim, colorReset, ds.PlannedDate)
	cmd.Printf("%sPerformed:%s   %s\n", colorDim, colorReset, formatTime(ds.ActualDate))
}

func init() {
	scheduleCompleteCmd.Flags().StringVar(&scheduleActualDate, "actual-date", "", "Date the maintenance was performed (YYYY-MM-DD, default today)")
	scheduleCancelCmd.Flags().StringVar(&scheduleCancelReason, "reason", "", "Why the schedule is cancelled")

	scheduleCmd.AddCommand(scheduleCompleteCmd, scheduleCancelCmd)
	rootCmd.AddCommand(scheduleCmd)
}

package cmd

import (
	"github.com/spf13/cobra"
)

var notificationsAll bool

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "List approval steps waiting on you",
	Long: `List the active approval steps you hold the job role for, with the days left
until the maintenance is due. Administrators can pass --all to see the pending
items of every role holder.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		if client == nil {
			return
		}

		items, err := client.Notifications(notificationsAll)
		if err != nil {
			printAPIError(cmd, err)
			return
		}
		if len(items) == 0 {
			cmd.Println("Nothing is waiting on you.")
			return
		}

		for _, n := range items {
			marker := colorCyan + "◯" + colorReset
			switch {
			case n.Overdue:
				marker = colorRed + "!" + colorReset
			case n.Urgent:
				marker = colorYellow + "⏳" + colorReset
			}
			cmd.Printf("%s %s step %d (%s) asset %s %s due %s, %d days\n",
				marker, n.WorkflowID, n.SequenceNo, n.JobRoleID, n.AssetID, n.MaintenanceTypeID, n.PlannedDate, n.DaysUntilDue)
			if notificationsAll {
				cmd.Printf("    %sfor user %s%s\n", colorDim, n.UserID, colorReset)
			}
		}
	},
}

func init() {
	notificationsCmd.Flags().BoolVar(&notificationsAll, "all", false, "Show every role holder's items (administrators only)")
	rootCmd.AddCommand(notificationsCmd)
}

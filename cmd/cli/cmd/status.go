package cmd

import (
	"maintplane/pkg/api"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [workflow_id]",
	Short: "Get status of a maintenance workflow",
	Long:  `Retrieve a maintenance workflow with its approval steps, including the header state (IN_PROGRESS, COMPLETED, CANCELLED) and who acted on each step.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		if client == nil {
			return
		}

		wf, err := client.GetWorkflow(args[0])
		if err != nil {
			printAPIError(cmd, err)
			return
		}
		printWorkflow(cmd, wf)
	},
}

func printWorkflow(cmd *cobra.Command, wf *api.WorkflowResponse) {
	// Header with status icon
	cmd.Printf("%s %sWorkflow Details%s\n", statusIcon(wf.Status), colorBold, colorReset)
	cmd.Println("──────────────────────────────")

	cmd.Printf("%sID:%s          %s\n", colorDim, colorReset, wf.ID)
	cmd.Printf("%sAsset:%s       %s\n", colorDim, colorReset, wf.AssetID)
	cmd.Printf("%sType:%s        %s\n", colorDim, colorReset, wf.MaintenanceTypeID)
	cmd.Printf("%sStatus:%s      %s\n", colorDim, colorReset, colorizeStatus(wf.Status))
	cmd.Printf("%sPlanned:%s     %s\n", colorDim, colorReset, wf.PlannedDate)
	cmd.Printf("%sPerformed:%s   %s\n", colorDim, colorReset, formatTime(wf.ActualDate))

	if len(wf.Steps) == 0 {
		return
	}
	cmd.Println()
	cmd.Printf("%sSteps%s\n", colorBold, colorReset)
	for _, st := range wf.Steps {
		cmd.Printf("  %d. %-12s %s", st.SequenceNo, st.JobRoleID, colorizeStatus(st.Status))
		if st.ActedBy != nil {
			cmd.Printf(" %sby %s at %s%s", colorDim, *st.ActedBy, formatTime(st.ActedAt), colorReset)
		}
		if st.Comment != nil && *st.Comment != "" {
			cmd.Printf(" %q", *st.Comment)
		}
		cmd.Println()
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

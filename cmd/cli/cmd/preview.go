package cmd

import (
	"github.com/spf13/cobra"
)

var previewAsOf string

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show which assets are due without creating anything",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		if client == nil {
			return
		}

		preview, err := client.Preview(previewAsOf)
		if err != nil {
			printAPIError(cmd, err)
			return
		}

		cmd.Printf("%sEligibility as of %s%s\n", colorBold, preview.AsOf, colorReset)
		if len(preview.Results) == 0 {
			cmd.Println("No maintained assets found.")
			return
		}
		for _, r := range preview.Results {
			if r.Eligible {
				cmd.Printf("%s✓%s %s %s planned %s\n", colorGreen, colorReset, r.AssetID, r.MaintenanceTypeID, deref(r.PlannedDate))
				continue
			}
			if r.Reason == "not_due" {
				cmd.Printf("%s◯%s %s %s planned %s, window opens in %d days\n",
					colorCyan, colorReset, r.AssetID, r.MaintenanceTypeID, deref(r.PlannedDate), r.DaysRemaining)
				continue
			}
			cmd.Printf("%s•%s %s %s %s%s%s\n", colorDim, colorReset, r.AssetID, r.MaintenanceTypeID, colorDim, r.Reason, colorReset)
		}
	},
}

func init() {
	previewCmd.Flags().StringVar(&previewAsOf, "as-of", "", "Evaluate as of this date (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(previewCmd)
}

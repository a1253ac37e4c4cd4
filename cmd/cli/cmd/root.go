package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "maintctl",
	Short: "Maintctl is a command line tool for interacting with the maintplane controller",
	Long: `maintctl is the command-line interface for the maintplane maintenance platform.

maintplane decides when each asset is due for preventive maintenance, opens a
maintenance workflow with a role-based approval chain, and tells role holders
which steps are waiting on them.

Common workflows:

  Preview which assets are due:
    maintctl preview --as-of 2024-06-21

  Trigger a maintenance run (administrators):
    maintctl generate

  See what is waiting on you:
    maintctl notifications

  Approve or reject the active step:
    maintctl approve <workflow-id> --comment "done"
    maintctl reject <workflow-id> --reason "asset retired"

  Inspect a workflow:
    maintctl status <workflow-id>
    maintctl history <workflow-id>

Configuration:
  Set the API endpoint and credentials via environment variables or a config file:
    MAINTPLANE_URL      API endpoint (default: http://localhost:6161)
    MAINTPLANE_TOKEN    User API key for authentication`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".maintctl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".maintctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "MAINTPLANE_VARNAME"
	viper.SetEnvPrefix("MAINTPLANE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newClient returns a client for the configured controller, or nil after
// telling the user how to provide a token.
func newClient(cmd *cobra.Command) *MaintClient {
	token := viper.GetString("token")
	if token == "" {
		cmd.Println("API token not found. Please set it using the --token flag or the MAINTPLANE_TOKEN environment variable")
		return nil
	}
	return NewMaintClient(viper.GetString("url"), token)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.maintctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:6161", "maintplane controller URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))

	rootCmd.PersistentFlags().StringP("token", "t", "", "API key for authentication")
	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
}

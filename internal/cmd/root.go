package cmd

import (
	"strings"

	"github.com/Iron-Ham/hivecouncil/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd builds the command tree. Each call returns fresh commands and
// flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hivecouncil",
		Short: "Run and watch multi-model council sessions",
		Long: `HiveCouncil asks several AI models the same question, lets them critique
each other over a number of iterations and has a chair model merge the
answers into a consensus. This client starts sessions on a HiveCouncil
service and follows their progress live.`,
		SilenceUsage: true,
	}

	// Global flags
	root.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/hivecouncil/config.yaml)")
	_ = viper.BindPFlag("config", root.PersistentFlags().Lookup("config"))

	root.AddCommand(newRunCmd())
	root.AddCommand(newReplayCmd())
	root.AddCommand(newConfigCmd())
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("HIVECOUNCIL")
	// e.g., HIVECOUNCIL_SERVER_BASE_URL for server.base_url
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

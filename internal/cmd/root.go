package cmd

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/pcsplit/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "pcsplit",
	Short: "Program committee conflict finder and session splitter",
	Long: `pcsplit finds conflicts of interest between program committee members
and paper authors, then splits the committee and the papers into two
balanced review sessions (Friday and Saturday).

A typical run:
  pcsplit collaborators          # review fuzzy collaborator matches
  pcsplit conflicts --review out/collaborator_review.txt --store
  pcsplit partition-pc
  pcsplit partition-papers --from-store
  pcsplit export-tags`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "config file (default is $HOME/.config/pcsplit/config.yaml)")
	pf.String("papers", "", "submissions JSON export")
	pf.String("roster", "", "committee roster CSV")
	pf.String("institutions", "", "institution alias list")
	pf.StringP("out", "o", "", "output directory")
	pf.String("log-level", "", "log level (debug, info, warn, error); enables logging")
	pf.String("log-dir", "", "directory for pcsplit.log (default stderr); enables logging")
	pf.Bool("no-color", false, "disable colored output")
}

// persistentBindings maps global flags onto config keys.
var persistentBindings = map[string]string{
	"config":       "config",
	"papers":       "inputs.papers",
	"roster":       "inputs.roster",
	"institutions": "inputs.institutions",
	"out":          "output.dir",
	"log-level":    "logging.level",
	"log-dir":      "logging.dir",
}

func initConfig() {
	// A .env file may hold PCSPLIT_* settings for the current project.
	_ = godotenv.Load()

	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	pf := rootCmd.PersistentFlags()
	for flag, key := range persistentBindings {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}
	if pf.Changed("log-level") || pf.Changed("log-dir") {
		viper.Set("logging.enabled", true)
	}

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("PCSPLIT")
	// Replace dots with underscores for nested keys in env vars
	// e.g., PCSPLIT_PARTITION_MEMBER_TRIALS for partition.member_trials
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// commandBindings maps subcommand flags onto config keys.
var commandBindings = map[string]string{
	"strategy":   "partition.strategy",
	"seed":       "partition.seed",
	"store-path": "store.path",
}

// bindCommandFlags binds the running command's own flags that override
// config keys. Only flags set on the command line take effect, so config
// and environment values survive otherwise.
func bindCommandFlags(cmd *cobra.Command) {
	for flag, key := range commandBindings {
		if f := cmd.Flags().Lookup(flag); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}

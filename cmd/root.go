package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/mediverifyng/mediverify/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `	                  _ _                _  __
	 _ __ ___   ___ __| (_)_   _____ _ __(_)/ _|_   _
	| '_ ` + "`" + ` _ \ / _ \/ _` + "`" + ` | \ \ / / _ \ '__| | |_| | | |
	| | | | | |  __/ (_| | |\ V /  __/ |  | |  _| |_| |
	|_| |_| |_|\___|\__,_|_| \_/ \___|_|  |_|_|  \__, |
	                                             |___/

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mediverify",
	Short: "Verify drug registration codes against the NAFDAC reference catalog.",
	Long: LOGO + `mediverify checks a NAFDAC registration number against a local reference
catalog, suggests close matches when a code isn't found, and records
suspicion reports for later review.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mediverify.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("catalog", "c", "", "Path to the drug catalog CSV (default data/drugs.csv)")
	rootCmd.PersistentFlags().StringP("dbpath", "", "", "Path to the reports database (default ~/.config/mediverify/mediverify.sqlite)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".mediverify")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.mediverify.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default empty values for all keys
	viper.SetDefault("catalog.path", "data/drugs.csv")
	viper.SetDefault("catalog.json_url", "")
	viper.SetDefault("catalog.html_url", "")
	viper.SetDefault("server.username", "")
	viper.SetDefault("server.password", "")

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}

// catalogPath resolves the catalog location: flag first, then config.
func catalogPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("catalog"); p != "" {
		return p
	}
	return viper.GetString("catalog.path")
}

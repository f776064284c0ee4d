package cmd

import (
	"fmt"
	"os"

	"github.com/gameshelf/gameshelf/internal/utils"
	"github.com/gameshelf/gameshelf/pkg/catalog"
	"github.com/gameshelf/gameshelf/pkg/reconcile"
	"github.com/gameshelf/gameshelf/pkg/steam"
	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `                                 _          _  __
  __ _  __ _ _ __ ___   ___  ___| |__   ___| |/ _|
 / _' |/ _' | '_ ' _ \ / _ \/ __| '_ \ / _ \ | |_
| (_| | (_| | | | | | |  __/\__ \ | | |  __/ |  _|
 \__, |\__,_|_| |_| |_|\___||___/_| |_|\___|_|_|
 |___/
`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gameshelf",
	Short: "Keep track of the games you own across platforms.",
	Long: LOGO + `gameshelf imports your game collection from a spreadsheet export, keeps it in a
local SQLite database and links every Steam copy to its Steam app id.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
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
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gameshelf.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy for Steam requests (Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("dbpath", "", "Path to SQLite DB file (default is ~/.config/gameshelf/gameshelf.sqlite)")
	_ = viper.BindPFlag("db.path", rootCmd.PersistentFlags().Lookup("dbpath"))
	_ = viper.BindPFlag("steam.proxy", rootCmd.PersistentFlags().Lookup("proxy"))
}

func setConfigDefaults() {
	viper.SetDefault("db.path", "")
	viper.SetDefault("match.platform", "Steam")
	viper.SetDefault("match.threshold", reconcile.DefaultThreshold)
	viper.SetDefault("match.scorer", "token_sort")
	viper.SetDefault("match.policy", string(reconcile.PolicyThreshold))
	viper.SetDefault("steam.applist_url", steam.DefaultAppListURL)
	viper.SetDefault("steam.appdetails_url", steam.DefaultAppDetailsURL)
	viper.SetDefault("steam.retry_max", steam.DefaultRetryMax)
	for field, column := range defaultColumnConfig() {
		viper.SetDefault("import.columns."+field, column)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setConfigDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".gameshelf")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("gameshelf")
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.gameshelf.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}

// indexOptions applies match.scorer. The default token-sort scorer runs on
// keys precomputed by the index, so it is only replaced when another scorer
// is configured.
func indexOptions() []catalog.Option {
	switch name := viper.GetString("match.scorer"); name {
	case "", "token_sort":
		return nil
	default:
		return []catalog.Option{catalog.WithScorer(catalog.ScorerByName(name))}
	}
}

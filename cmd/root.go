package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pders01/checkpoint/internal/config"
	"github.com/pders01/checkpoint/internal/logging"
)

var (
	cfgFile    string
	projectDir string
	verbose    bool
	logFormat  string

	appLog   = logr.Discard()
	flushLog = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Save and restore game file states with snapshots",
	Long: `checkpoint keeps snapshots of a game directory (saves, configs, mods)
so any earlier state can be brought back with one command.

Before a restore overwrites files, pending changes are stored in an
automatic safety backup, so restoring never silently discards work.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func Execute() {
	err := rootCmd.Execute()
	flushLog()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/checkpoint/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", "", "game directory to manage (default is the current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every backend command")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json")

	_ = viper.BindPFlag(config.KeyLogVerbose, rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.SilenceErrors = true
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "checkpoint")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("CHECKPOINT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Warning: cannot read config:", err)
		}
	}
}

func setupLogging(cmd *cobra.Command, args []string) error {
	log, flush, err := logging.New(config.LogVerbose(), config.LogFormat())
	if err != nil {
		return err
	}
	appLog = log
	flushLog = flush
	if used := viper.ConfigFileUsed(); used != "" {
		appLog.V(1).Info("using config file", "path", used)
	}
	return nil
}

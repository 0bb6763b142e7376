// Package cli wires the cobra command tree for capwire-generator.
package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:     "capwire-generator",
	Short:   "Build-time capability wiring and code generation for Go",
	Long: `capwire-generator resolves declarative capability wiring at build time.

Capabilities, providers, and contexts are declared in YAML. The resolver
picks one provider chain per (context, capability) pair, verifies the full
constraint set against the analyzed Go types, and generates specialized,
indirection-free dispatch code.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .capwire/config.yaml)")
	rootCmd.PersistentFlags().StringP("wiring", "w", "",
		"doublestar glob for wiring files")
	rootCmd.PersistentFlags().Int("parallelism", 0,
		"max contexts resolved concurrently (0 = number of CPUs)")

	_ = viper.BindPFlag("wiring", rootCmd.PersistentFlags().Lookup("wiring"))
	_ = viper.BindPFlag("parallelism", rootCmd.PersistentFlags().Lookup("parallelism"))
}

func initConfig() {
	viper.SetDefault("wiring", "**/*.capwire.yaml")
	viper.SetDefault("output", ".")
	viper.SetDefault("package", "")
	viper.SetDefault("parallelism", 0)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .capwire/config.yaml (current directory)
		// 2. ~/.config/capwire/config.yaml (user config)
		if _, err := os.Stat(".capwire/config.yaml"); err == nil {
			viper.SetConfigFile(".capwire/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "capwire"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// Running without a config file is fine; flags and defaults apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			printError(err)
		}
	}
}

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func Execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "openassistant",
		Short: "Integration and skill dispatch harness",
	}

	cobra.OnInitialize(initConfig)

	cmd.PersistentFlags().String("config", "", "Config file path (optional).")
	_ = viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))

	cmd.PersistentFlags().String("log-level", "", "Logging level: debug|info|warn|error.")
	cmd.PersistentFlags().String("log-format", "text", "Logging format: text|json.")
	cmd.PersistentFlags().Bool("log-add-source", false, "Include source file:line in logs.")
	cmd.PersistentFlags().String("catalog", "", "Extra YAML capability catalog to load.")

	_ = viper.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", cmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("logging.add_source", cmd.PersistentFlags().Lookup("log-add-source"))
	_ = viper.BindPFlag("capability.catalog", cmd.PersistentFlags().Lookup("catalog"))

	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.add_source", false)
	viper.SetDefault("dispatch.connect_timeout", "30s")
	viper.SetDefault("dispatch.upstream_timeout", "30s")
	viper.SetDefault("audit.max_field_len", 2000)

	cmd.AddCommand(newIntegrationsCmd())
	cmd.AddCommand(newSkillsCmd())
	cmd.AddCommand(newInvokeCmd())
	cmd.AddCommand(newAuditCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func initConfig() {
	if cfg := strings.TrimSpace(viper.GetString("config")); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".openassistant"))
		}
	}
	// Missing config file is fine; env and flags still apply.
	_ = viper.ReadInConfig()
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eringen/spacetraveling"
)

var (
	cfgFile   string
	envFile   string
	staticDir string
	siteCfg   spacetraveling.SiteConfig
)

// configKeys are the keys read from the config file or SPACETRAVELING_* env vars.
var configKeys = []string{
	"name", "url", "description", "author", "locale",
	"addr", "database_path",
	"prismic_endpoint", "prismic_access_token", "post_type", "page_size",
	"listing_revalidate", "post_revalidate", "generation_limit",
	"session_secret", "cookie_secure",
	"build_on_start", "log_level",
}

var rootCmd = &cobra.Command{
	Use:   "spacetraveling",
	Short: "spacetraveling - a blog served from a Prismic repository",
	Long: `spacetraveling renders a blog whose posts live in a Prismic repository.
Pages are generated into a SQLite page store and served stale while they are
regenerated in the background.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		return initializeConfig()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&staticDir, "static", "public", "directory of static assets served under /public/")
	rootCmd.AddCommand(serveCmd, buildCmd, purgeCmd, versionCmd)
}

func initializeConfig() error {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SPACETRAVELING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(&siteCfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return nil
}

func newApp() (*spacetraveling.App, error) {
	app := spacetraveling.New(siteCfg, spacetraveling.WithStaticDir(staticDir))
	if err := app.Init(); err != nil {
		return nil, err
	}
	return app, nil
}

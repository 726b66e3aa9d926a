package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/xraph/elastic"
)

type rootOptions struct {
	configFile string
	envFile    string
	verbose    bool

	v      *viper.Viper
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "elastic",
		Short:         "Offline tooling for the elastic rebasing token",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd.Flags())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "token config file (yaml, json or toml)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading ELASTIC_* variables")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newSimulateCmd(opts),
		newProjectCmd(opts),
		newAirdropCmd(opts),
	)
	return cmd
}

func (o *rootOptions) init(flags *pflag.FlagSet) error {
	o.logger = newLogger(o.verbose)

	if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", o.envFile, err)
	}

	o.v.SetEnvPrefix("ELASTIC")
	o.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	o.v.AutomaticEnv()
	if err := o.v.BindPFlags(flags); err != nil {
		return err
	}

	if o.configFile != "" {
		o.v.SetConfigFile(o.configFile)
		if err := o.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		o.logger.Debug("config loaded", "file", o.v.ConfigFileUsed())
	}
	return nil
}

// tokenConfig decodes the token section over the defaults. Environment
// variables such as ELASTIC_TOKEN_DESTINATIONS_TREASURY override the file.
func (o *rootOptions) tokenConfig() (elastic.Config, error) {
	for _, key := range []string{
		"token.initial_supply", "token.owner", "token.pair",
		"token.destinations.treasury", "token.destinations.swap_collector",
		"token.destinations.liquidity_collector", "token.destinations.liquidity_relief",
		"token.destinations.insurance", "token.destinations.burn",
	} {
		_ = o.v.BindEnv(key)
	}

	file := struct {
		Token elastic.Config `mapstructure:"token"`
	}{Token: elastic.DefaultConfig()}

	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := o.v.Unmarshal(&file, hooks); err != nil {
		return file.Token, fmt.Errorf("decode token config: %w", err)
	}
	return file.Token, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if s, ok := a.Value.Any().(string); ok && s == "" {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package cmd

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/DataDog/hashmeter/tdigest"
	"github.com/DataDog/hashmeter/tdigest/scale"
)

const (
	EnvPrefix = "HASHMETER"

	DefaultDataDir     = "data"
	DefaultSnapshot    = "hashmeter.json"
	DefaultCompression = tdigest.DefaultCompression
	DefaultScale       = "k1"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// app holds what the subcommands share. Each root command gets its own viper
// instance so that commands can be built and run several times in a process.
type app struct {
	config *viper.Viper
	logger *log.Logger
}

func RootCmd() *cobra.Command {
	a := &app{config: viper.New(), logger: log.New()}

	cmd := &cobra.Command{
		Use:          "hashmeter",
		Short:        "Measures PBKDF2 hashing latency and summarizes it with a t-digest",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initialize(cmd)
		},
	}

	cmd.PersistentFlags().String("config", "", "YAML configuration file")
	cmd.PersistentFlags().String("log-level", DefaultLogLevel, "log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", DefaultLogFormat, "log format (text or json)")

	cmd.AddCommand(
		a.runCmd(),
		a.analyzeCmd(),
		a.mergeCmd(),
	)
	return cmd
}

// initialize binds the flags of the executed command, the HASHMETER_*
// environment variables and the configuration file, in increasing order of
// precedence for flags set on the command line.
func (a *app) initialize(cmd *cobra.Command) error {
	if err := a.config.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "binding flags")
	}
	a.config.SetEnvPrefix(EnvPrefix)
	a.config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.config.AutomaticEnv()

	if path := a.config.GetString("config"); path != "" {
		a.config.SetConfigFile(path)
		if err := a.config.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "reading configuration file %s", path)
		}
	}
	return a.configureLogging(cmd)
}

func (a *app) configureLogging(cmd *cobra.Command) error {
	level, err := log.ParseLevel(a.config.GetString("log-level"))
	if err != nil {
		return err
	}
	a.logger.SetLevel(level)
	switch format := a.config.GetString("log-format"); format {
	case "text":
		a.logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		a.logger.SetFormatter(&log.JSONFormatter{})
	default:
		return errors.Errorf("unknown log format %q", format)
	}
	a.logger.SetOutput(cmd.ErrOrStderr())
	return nil
}

func (a *app) component(name string) *log.Entry {
	return a.logger.WithField("component", name)
}

func addDigestFlags(flags *pflag.FlagSet) {
	flags.Float64("compression", DefaultCompression, "t-digest compression factor, higher is more accurate and bigger")
	flags.String("scale", DefaultScale, "t-digest scale function (k0, k1, k2)")
}

func (a *app) digestOptions() ([]tdigest.Option, error) {
	f, err := scale.FromName(a.config.GetString("scale"))
	if err != nil {
		return nil, err
	}
	return []tdigest.Option{
		tdigest.Compression(a.config.GetFloat64("compression")),
		tdigest.Scale(f),
	}, nil
}

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/oomph-ac/locomotion/settings"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli holds the state shared by the commands of a root command.
type cli struct {
	v   *viper.Viper
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New(), log: logrus.New()}

	var cfgFile string
	root := &cobra.Command{
		Use:           "locosim",
		Short:         "Simulate networked character locomotion.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.initializeConfig(cmd, cfgFile); err != nil {
				return err
			}
			return c.initializeLogger()
		},
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./locosim.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level")
	root.PersistentFlags().Bool("pprof", false, "serve runtime statistics on --pprof-addr")
	root.PersistentFlags().String("pprof-addr", "localhost:8080", "address of the runtime statistics page")

	root.AddCommand(c.newRunCmd(), c.newReplayCmd(), c.newSettingsCmd())
	return root
}

// initializeConfig reads in the config file and LOCOSIM_ environment variables, and binds them to the
// flags of cmd.
func (c *cli) initializeConfig(cmd *cobra.Command, cfgFile string) error {
	if cfgFile != "" {
		c.v.SetConfigFile(cfgFile)
	} else {
		c.v.AddConfigPath(".")
		c.v.SetConfigName("locosim")
		c.v.SetConfigType("yaml")
	}

	c.v.SetEnvPrefix("LOCOSIM")
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	c.v.AutomaticEnv()

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	if err := c.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

func (c *cli) initializeLogger() error {
	c.log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	lvl, err := logrus.ParseLevel(c.v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	c.log.SetLevel(lvl)

	if c.v.GetBool("pprof") || os.Getenv("PPROF_ENABLED") != "" {
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr(c.v.GetString("pprof-addr")))
		mgr := statsview.New()
		go mgr.Start()
		c.log.Infof("runtime statistics on http://%s/debug/statsview", c.v.GetString("pprof-addr"))
	}
	return nil
}

// settings returns the default settings, overridden by the settings section of the config file.
func (c *cli) settings() (settings.Settings, error) {
	s := settings.DefaultSettings()
	if path := c.v.GetString("settings"); path != "" {
		return settings.Load(path)
	}
	if c.v.IsSet("prediction") || c.v.IsSet("smoothing") || c.v.IsSet("simulation") || c.v.IsSet("debug") {
		if err := c.v.Unmarshal(&s); err != nil {
			return s, fmt.Errorf("failed to unmarshal settings: %w", err)
		}
	}
	return s, nil
}

package main

import (
	"github.com/oomph-ac/locomotion/settings"
	"github.com/spf13/cobra"
)

func (c *cli) newSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings <path>",
		Short: "Write the default settings to a file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := settings.SaveDefault(args[0]); err != nil {
				return err
			}
			c.log.Infof("wrote default settings to %s", args[0])
			return nil
		},
	}
}

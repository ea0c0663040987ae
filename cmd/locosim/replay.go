package main

import (
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/movesim"
	"github.com/oomph-ac/locomotion/session"
	"github.com/spf13/cobra"
)

func (c *cli) newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <recording>",
		Short: "Replay a recorded client session.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := session.ReadFile(args[0])
			if err != nil {
				return err
			}
			data, err := config.Load(c.v.GetString("tree"))
			if err != nil {
				return err
			}
			// Recordings only hold the client, which never sees the server's wall.
			frames, err := session.Replay(rec, session.ReplayOptions{Data: data, Env: movesim.NewFlatWorld(0), Log: c.log})
			if err != nil {
				return err
			}
			c.log.Infof("replayed recording %v: %d events, %d frames, checksum %x", rec.Session, len(rec.Events), len(frames), rec.Checksum())

			if path := c.v.GetString("trace"); path != "" {
				if err := writeTrace(path, frames); err != nil {
					return err
				}
				c.log.Infof("wrote %d frames to %s", len(frames), path)
			}
			return nil
		},
	}
	cmd.Flags().String("tree", "", "locomotion definition file the recording was made with, the built-in one if empty")
	cmd.Flags().String("trace", "", "write a CSV trace of the replay to this file")
	return cmd
}

package session

import (
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/movesim"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/sirupsen/logrus"
)

// ReplayOptions configures Replay.
type ReplayOptions struct {
	// Data must hold the tree the recording was made with. config.Default() is used if nil.
	Data *config.Data
	Env  movesim.Environment
	Log  *logrus.Logger
}

// Replay performs the events of a recording on a new session and returns the frames of every move. Given
// the same environment, replaying a recording yields the frames of the recorded session.
func Replay(rec *Recording, opts ReplayOptions) ([]Frame, error) {
	data := opts.Data
	if data == nil {
		data = config.Default()
	}
	if fp := data.Fingerprint(); fp != rec.Fingerprint {
		return nil, oerror.New("session: recording was made with tree %x, replaying with %x", rec.Fingerprint, fp)
	}

	c, err := locomotion.NewComponent(locomotion.Options{
		Data:         data,
		Settings:     rec.Settings,
		Env:          opts.Env,
		Role:         locomotion.RoleAutonomousProxy,
		Location:     rec.Start.Location,
		Rotation:     rec.Start.Rotation,
		MovementMode: rec.Start.Mode,
		Log:          opts.Log,
	})
	if err != nil {
		return nil, err
	}
	c.SetTransform(rec.Start)
	c.SetResolvedState(rec.State)
	c.SetDesiredRotationMode(rec.Desired.RotationMode)
	c.SetDesiredStance(rec.Desired.Stance)
	c.SetDesiredGait(rec.Desired.Gait)

	s := New(c, Options{Settings: rec.Settings, Log: opts.Log, TrackFrames: true})
	for i, ev := range rec.Events {
		if err := s.Apply(ev); err != nil {
			return s.Frames(), oerror.New("session: replaying event %d (%d at %.3f): %v", i, ev.ID(), ev.Time(), err)
		}
	}
	return s.Frames(), nil
}

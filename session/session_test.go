package session

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/event"
	"github.com/oomph-ac/locomotion/game"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/movesim"
	"github.com/oomph-ac/locomotion/prediction"
	"github.com/oomph-ac/locomotion/settings"
	"github.com/oomph-ac/locomotion/tag"
	"github.com/stretchr/testify/require"
)

const tickDelta = float32(1) / 60

func newSession(t *testing.T, env movesim.Environment) *Session {
	t.Helper()
	c, err := locomotion.NewComponent(locomotion.Options{
		Settings: settings.DefaultSettings(),
		Env:      env,
		Role:     locomotion.RoleAutonomousProxy,
		Location: mgl32.Vec3{0, 0, movesim.DefaultCapsuleHalfHeight},
	})
	require.NoError(t, err)
	return New(c, Options{Settings: settings.DefaultSettings(), TrackFrames: true})
}

// recordSession plays a session against a server whose world has a wall the client does not know about,
// so that the server corrects the client.
func recordSession(t *testing.T) (*Session, *Recording) {
	t.Helper()
	s := newSession(t, movesim.NewFlatWorld(0))
	s.StartRecording()
	require.True(t, s.Recording())

	wall := movesim.Solid{Bounds: cube.Box(150, -1000, 0, 250, 1000, 500)}
	sc, err := locomotion.NewComponent(locomotion.Options{
		Settings: settings.DefaultSettings(),
		Env:      movesim.NewFlatWorld(0, wall),
		Role:     locomotion.RoleAuthority,
		Location: mgl32.Vec3{0, 0, movesim.DefaultCapsuleHalfHeight},
	})
	require.NoError(t, err)
	server := prediction.NewServer(sc, settings.DefaultSettings(), nil)

	send := func(ct *prediction.Container) {
		if ct == nil {
			return
		}
		resp, err := server.Process(ct)
		require.NoError(t, err)
		if resp.Ack != nil {
			s.OnAck(*resp.Ack)
		}
		if resp.Correction != nil {
			require.NoError(t, s.OnCorrection(*resp.Correction))
		}
	}

	ts := 0.0
	for i := 0; i < 180; i++ {
		switch i {
		case 20:
			s.SetDesiredGait(tag.GaitSprinting)
		case 60:
			s.SetLocomotionAction("Status.LocomotionAction.Rolling")
		case 70:
			s.SetLocomotionAction(tag.None)
			s.SetRotationYawSpeed(45)
		case 100:
			s.SetDesiredStance(tag.StanceCrouching)
			s.SetMovementMode(config.MovementModeCustom, 1)
		}
		ts += float64(tickDelta)
		ct, err := s.Tick(prediction.Move{
			Timestamp:       ts,
			DeltaTime:       tickDelta,
			Acceleration:    mgl32.Vec3{2500},
			Jump:            i == 120,
			ControlRotation: game.Rotator{Yaw: float32(i)},
		})
		require.NoError(t, err)
		send(ct)
	}
	send(s.Flush())
	require.NotZero(t, s.Client().Corrections())

	rec := s.StopRecording()
	require.NotNil(t, rec)
	require.False(t, s.Recording())
	return s, rec
}

func TestReplayReproducesSession(t *testing.T) {
	s, rec := recordSession(t)
	require.Equal(t, s.ID(), rec.Session)

	b, err := rec.Encode()
	require.NoError(t, err)
	decoded, err := DecodeRecording(b)
	require.NoError(t, err)
	require.Equal(t, rec.Checksum(), decoded.Checksum())
	require.Len(t, decoded.Events, len(rec.Events))

	frames, err := Replay(decoded, ReplayOptions{Env: movesim.NewFlatWorld(0)})
	require.NoError(t, err)
	if diff := cmp.Diff(s.Frames(), frames); diff != "" {
		t.Fatalf("replayed frames differ (-live +replay):\n%s", diff)
	}

	again, err := Replay(decoded, ReplayOptions{Env: movesim.NewFlatWorld(0)})
	require.NoError(t, err)
	require.Equal(t, frames, again)
}

func TestRecordingEvents(t *testing.T) {
	_, rec := recordSession(t)

	var moves, corrections, desired int
	for _, ev := range rec.Events {
		switch ev.(type) {
		case *event.MoveEvent:
			moves++
		case *event.CorrectionEvent:
			corrections++
		case *event.DesiredStateEvent:
			desired++
		}
	}
	require.Equal(t, 180, moves)
	require.NotZero(t, corrections)
	require.Equal(t, 2, desired)

	// Events other than moves take the time of the last move.
	for i, ev := range rec.Events {
		if _, ok := ev.(*event.MoveEvent); !ok && i > 0 {
			require.Equal(t, rec.Events[i-1].Time(), ev.Time())
			break
		}
	}
}

func TestReplayRejectsOtherTree(t *testing.T) {
	_, rec := recordSession(t)
	rec.Fingerprint++
	_, err := Replay(rec, ReplayOptions{Env: movesim.NewFlatWorld(0)})
	require.Error(t, err)
}

func TestDecodeRecordingRejectsCorruption(t *testing.T) {
	_, rec := recordSession(t)
	b, err := rec.Encode()
	require.NoError(t, err)

	// The checksum is the last field.
	corrupt := bytes.Clone(b)
	corrupt[len(corrupt)-1] ^= 0xff
	_, err = DecodeRecording(corrupt)
	require.Error(t, err)

	_, err = DecodeRecording(b[:len(b)/2])
	require.Error(t, err)

	rec.Version = "0"
	b, err = rec.Encode()
	require.NoError(t, err)
	_, err = DecodeRecording(b)
	require.Error(t, err)
}

func TestRecordingFile(t *testing.T) {
	_, rec := recordSession(t)
	path := filepath.Join(t.TempDir(), "session.rec")
	require.NoError(t, rec.WriteFile(path))

	read, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, rec.Session, read.Session)
	require.Equal(t, rec.Fingerprint, read.Fingerprint)
	require.Equal(t, rec.Start, read.Start)
	require.Equal(t, rec.State, read.State)
	require.Equal(t, rec.Desired, read.Desired)
	require.Equal(t, rec.Settings, read.Settings)
	require.Equal(t, rec.Checksum(), read.Checksum())

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.rec"))
	require.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	s := newSession(t, movesim.NewFlatWorld(0))
	ts := 0.0
	for i := 0; i < 3; i++ {
		ts += float64(tickDelta)
		_, err := s.Tick(prediction.Move{Timestamp: ts, DeltaTime: tickDelta, Acceleration: mgl32.Vec3{0, 2500}})
		require.NoError(t, err)
	}
	require.Len(t, s.Frames(), 3)
	require.False(t, s.Recording())
	require.Nil(t, s.StopRecording())

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, s.Frames()[:2], true))
	require.NoError(t, WriteCSV(&buf, s.Frames()[2:], false))
	require.NoError(t, WriteCSV(&buf, nil, false))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasPrefix(lines[0], "tick,timestamp,x,y,z,"))
	require.True(t, strings.HasPrefix(lines[1], "1,"))
	require.Contains(t, lines[3], "walking")
}

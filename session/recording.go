package session

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/oomph-ac/locomotion/assert"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/event"
	"github.com/oomph-ac/locomotion/internal"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/oomph-ac/locomotion/prediction"
	"github.com/oomph-ac/locomotion/resolver"
	"github.com/oomph-ac/locomotion/settings"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/zeebo/xxh3"
	"gopkg.in/yaml.v3"
)

const CurrentRecordingVer = "1"

// Recording is everything a session did between StartRecording and StopRecording.
type Recording struct {
	Version string
	// Session is the ID of the recorded session.
	Session uuid.UUID
	// Fingerprint is the fingerprint of the locomotion definition the session ran with.
	Fingerprint uint64
	Settings    settings.Settings

	// Start, State and Desired are the state of the component when the recording started.
	Start   prediction.Transform
	State   resolver.State
	Desired resolver.DesiredState

	Events []event.Event
}

// StartRecording starts recording the session. A replay of the recording is only exact if it was started
// before the first move.
func (s *Session) StartRecording() {
	if s.recording != nil {
		return
	}
	s.recording = &Recording{
		Version:     CurrentRecordingVer,
		Session:     s.id,
		Fingerprint: s.c.Data().Fingerprint(),
		Settings:    s.settings,
		Start:       s.c.Transform(),
		State:       s.c.ResolvedState(),
		Desired:     s.c.DesiredState(),
	}
	if s.client.SavedMoves().Len() != 0 {
		s.log.Warnf("session: recording started with %d unacknowledged moves, replays may diverge", s.client.SavedMoves().Len())
	}
}

// StopRecording stops recording and returns the recording, or nil if the session was not recording.
func (s *Session) StopRecording() *Recording {
	rec := s.recording
	s.recording = nil
	return rec
}

// Recording reports whether the session is recording.
func (s *Session) Recording() bool {
	return s.recording != nil
}

func (s *Session) record(ev event.Event) {
	if s.recording == nil {
		return
	}
	event.SetTime(ev, s.lastTimestamp)
	s.recording.Events = append(s.recording.Events, ev)
}

// Checksum hashes the encoded events of the recording.
func (r *Recording) Checksum() uint64 {
	return xxh3.Hash(event.EncodeEvents(r.Events))
}

// Encode encodes the recording. The events are followed by their checksum, which DecodeRecording
// verifies.
func (r *Recording) Encode() ([]byte, error) {
	cfg, err := yaml.Marshal(r.Settings)
	if err != nil {
		return nil, fmt.Errorf("error encoding settings: %w", err)
	}
	events := event.EncodeEvents(r.Events)
	sum := xxh3.Hash(events)

	return internal.Encode(func(w *protocol.Writer) {
		w.String(&r.Version)
		w.UUID(&r.Session)
		w.Uint64(&r.Fingerprint)
		w.ByteSlice(&cfg)
		marshalStart(w, r)
		w.ByteSlice(&events)
		w.Uint64(&sum)
	}), nil
}

// DecodeRecording decodes a recording. It returns an error if the recording could not be parsed, if its
// version is not supported or if its events do not match their checksum.
func DecodeRecording(b []byte) (*Recording, error) {
	var (
		rec    = &Recording{}
		cfg    []byte
		events []byte
		sum    uint64
	)
	err := internal.Decode(b, func(r *protocol.Reader) {
		r.String(&rec.Version)
		assert.IsTrue(rec.Version == CurrentRecordingVer, "unsupported recording version: %q", rec.Version)
		r.UUID(&rec.Session)
		r.Uint64(&rec.Fingerprint)
		r.ByteSlice(&cfg)
		marshalStart(r, rec)
		r.ByteSlice(&events)
		r.Uint64(&sum)
	})
	if err != nil {
		return nil, oerror.New("unable to decode recording: %v", err)
	}
	if got := xxh3.Hash(events); got != sum {
		return nil, oerror.New("recording checksum mismatch: %x != %x", got, sum)
	}

	rec.Settings = settings.DefaultSettings()
	if err := yaml.Unmarshal(cfg, &rec.Settings); err != nil {
		return nil, oerror.New("unable to decode recording settings: %v", err)
	}
	if rec.Events, err = event.DecodeEvents(events); err != nil {
		return nil, err
	}
	return rec, nil
}

// WriteFile writes the encoded recording to a file, replacing it if it exists.
func (r *Recording) WriteFile(path string) error {
	b, err := r.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("unable to write recording file: %w", err)
	}
	return nil
}

// ReadFile reads a recording written by WriteFile.
func ReadFile(path string) (*Recording, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read recording file: %w", err)
	}
	return DecodeRecording(b)
}

func marshalStart(io protocol.IO, r *Recording) {
	io.Vec3(&r.Start.Location)
	io.Vec3(&r.Start.Velocity)
	prediction.MarshalRotator(io, &r.Start.Rotation)
	mode := uint8(r.Start.Mode)
	io.Uint8(&mode)
	r.Start.Mode = config.MovementMode(mode)
	io.Uint8(&r.Start.CustomMode)
	prediction.MarshalState(io, &r.State)

	state := resolver.State{RotationMode: r.Desired.RotationMode, Stance: r.Desired.Stance, Gait: r.Desired.Gait}
	prediction.MarshalState(io, &state)
	r.Desired = state.Desired()
}

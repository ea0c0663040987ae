package session

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/oomph-ac/locomotion/locomotion"
)

// Frame is a row of a session trace.
type Frame struct {
	Tick      uint64  `csv:"tick"`
	Timestamp float64 `csv:"timestamp"`

	X float32 `csv:"x"`
	Y float32 `csv:"y"`
	Z float32 `csv:"z"`

	VelocityX float32 `csv:"velocity_x"`
	VelocityY float32 `csv:"velocity_y"`
	VelocityZ float32 `csv:"velocity_z"`
	Speed     float32 `csv:"speed"`
	Moving    bool    `csv:"moving"`

	Yaw          float32 `csv:"yaw"`
	TargetYaw    float32 `csv:"target_yaw"`
	ViewYaw      float32 `csv:"view_yaw"`
	ViewYawSpeed float32 `csv:"view_yaw_speed"`

	LocomotionMode string `csv:"locomotion_mode"`
	RotationMode   string `csv:"rotation_mode"`
	Stance         string `csv:"stance"`
	Gait           string `csv:"gait"`
	Action         string `csv:"action"`
	MovementMode   string `csv:"movement_mode"`

	Corrections int `csv:"corrections"`
}

// FrameOf returns the frame of a published snapshot.
func FrameOf(timestamp float64, s *locomotion.Snapshot, corrections int) Frame {
	l := s.Locomotion
	return Frame{
		Tick:           s.Tick,
		Timestamp:      timestamp,
		X:              l.Location[0],
		Y:              l.Location[1],
		Z:              l.Location[2],
		VelocityX:      l.Velocity[0],
		VelocityY:      l.Velocity[1],
		VelocityZ:      l.Velocity[2],
		Speed:          l.Speed,
		Moving:         l.Moving,
		Yaw:            l.Rotation.Yaw,
		TargetYaw:      l.TargetYaw,
		ViewYaw:        s.View.Rotation.Yaw,
		ViewYawSpeed:   s.View.YawSpeed,
		LocomotionMode: string(s.Resolved.LocomotionMode),
		RotationMode:   string(s.Resolved.RotationMode),
		Stance:         string(s.Resolved.Stance),
		Gait:           string(s.Resolved.Gait),
		Action:         string(s.Action),
		MovementMode:   s.MovementMode.String(),
		Corrections:    corrections,
	}
}

// WriteCSV writes frames as CSV. The header is only written if header is true, so that a trace may be
// written in several parts.
func WriteCSV(w io.Writer, frames []Frame, header bool) error {
	if len(frames) == 0 {
		return nil
	}
	var err error
	if header {
		err = gocsv.Marshal(frames, w)
	} else {
		err = gocsv.MarshalWithoutHeaders(frames, w)
	}
	if err != nil {
		return fmt.Errorf("failed to write frames: %w", err)
	}
	return nil
}

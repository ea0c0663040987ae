package event

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/game"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/prediction"
	"github.com/oomph-ac/locomotion/resolver"
	"github.com/oomph-ac/locomotion/tag"
	"github.com/stretchr/testify/require"
)

func TestEventStream(t *testing.T) {
	move := &MoveEvent{Move: prediction.Move{
		Timestamp:       0.5,
		DeltaTime:       1.0 / 60,
		Acceleration:    mgl32.Vec3{2500, 0, 0},
		Jump:            true,
		ControlRotation: game.Rotator{Yaw: 45},
		State: resolver.DesiredState{
			RotationMode: tag.RotationModeVelocityDirection,
			Stance:       tag.StanceCrouching,
			Gait:         tag.GaitRunning,
		},
	}}
	move.EvTime = 0.5

	events := []Event{
		move,
		&LocomotionActionEvent{NopEvent: NopEvent{EvTime: 0.5}, Action: "Status.LocomotionAction.Rolling"},
		&DesiredStateEvent{NopEvent: NopEvent{EvTime: 0.6}, Field: locomotion.DesiredGait, Current: tag.GaitSprinting},
		&MovementModeEvent{NopEvent: NopEvent{EvTime: 0.7}, Mode: config.MovementModeCustom, CustomMode: 2},
		&RotationYawSpeedEvent{NopEvent: NopEvent{EvTime: 0.7}, Speed: 90},
		&AckEvent{NopEvent: NopEvent{EvTime: 0.8}, Ack: prediction.Ack{Timestamp: 0.5}},
		&CorrectionEvent{NopEvent: NopEvent{EvTime: 0.9}, Correction: prediction.Correction{
			Timestamp: 0.6,
			Transform: prediction.Transform{Location: mgl32.Vec3{1, 2, 3}, Mode: config.MovementModeFalling},
			State: resolver.State{
				LocomotionMode: tag.LocomotionModeInAir,
				RotationMode:   tag.RotationModeViewDirection,
				Stance:         tag.StanceStanding,
				Gait:           tag.GaitRunning,
			},
		}},
	}

	decoded, err := DecodeEvents(EncodeEvents(events))
	require.NoError(t, err)
	if diff := cmp.Diff(events, decoded); diff != "" {
		t.Fatalf("decoded events differ (-want +got):\n%s", diff)
	}
}

func TestDecodeSingleEvent(t *testing.T) {
	ev := &AckEvent{NopEvent: NopEvent{EvTime: 3}, Ack: prediction.Ack{Timestamp: 2.5}}
	decoded, err := Decode(Encode(ev))
	require.NoError(t, err)
	require.Equal(t, ev, decoded)
	require.Equal(t, 3.0, decoded.Time())
}

func TestDecodeRejectsGarbage(t *testing.T) {
	b := Encode(&RotationYawSpeedEvent{Speed: 10})

	_, err := Decode(b[:len(b)-1])
	require.Error(t, err)

	_, err = Decode(append(b, 0))
	require.Error(t, err)

	b[0] = 200
	_, err = Decode(b)
	require.Error(t, err)

	// A count that cannot fit in the frame.
	_, err = DecodeEvents([]byte{0x7f})
	require.Error(t, err)
}

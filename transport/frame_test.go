package transport

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/game"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/movesim"
	"github.com/oomph-ac/locomotion/prediction"
	"github.com/oomph-ac/locomotion/resolver"
	"github.com/oomph-ac/locomotion/tag"
	"github.com/stretchr/testify/require"
)

var testState = resolver.State{
	LocomotionMode: tag.LocomotionModeOnGround,
	RotationMode:   tag.RotationModeVelocityDirection,
	Stance:         tag.StanceCrouching,
	Gait:           tag.GaitWalking,
}

func testFrames() []Frame {
	return []Frame{
		&Handshake{Fingerprint: 0xdeadbeef},
		&MoveBatch{Container: prediction.Container{
			Old: &prediction.Move{Timestamp: 1, DeltaTime: 0.016, Jump: true, State: testState.Desired()},
			New: &prediction.Move{
				Timestamp:       1.5,
				DeltaTime:       0.032,
				Acceleration:    mgl32.Vec3{2500, 10, 0},
				ControlRotation: game.Rotator{Pitch: -10, Yaw: 90},
				State:           resolver.DesiredState{RotationMode: tag.RotationModeViewDirection, Stance: tag.StanceStanding, Gait: tag.GaitSprinting},
				End:             prediction.Transform{Location: mgl32.Vec3{1, 2, 3}},
			},
		}},
		&Ack{Ack: prediction.Ack{Timestamp: 1.5}},
		&Correction{Correction: prediction.Correction{
			Timestamp: 1.5,
			Transform: prediction.Transform{Location: mgl32.Vec3{4, 5, 6}, Velocity: mgl32.Vec3{375}, Mode: config.MovementModeWalking},
			State:     testState,
		}},
		&ViewSnapshot{ProxyUpdate: locomotion.ProxyUpdate{
			ServerTime:   2.25,
			ViewRotation: game.Rotator{Yaw: 170},
			Transform: prediction.Transform{
				Location: mgl32.Vec3{7, 8, 9},
				Rotation: game.Rotator{Yaw: 160},
				Mode:     config.MovementModeCustom, CustomMode: 3,
			},
			Acceleration: mgl32.Vec3{0, 2500},
			State:        testState,
			Base:         movesim.BaseID(42),
			Bone:         "deck",
		}},
		&DesiredState{DesiredStateChange: locomotion.DesiredStateChange{
			Field:    locomotion.DesiredStance,
			Previous: tag.StanceStanding,
			Current:  tag.StanceCrouching,
			State:    testState.Desired(),
		}},
	}
}

func TestFrameCodec(t *testing.T) {
	for _, f := range testFrames() {
		t.Run(f.Kind().String(), func(t *testing.T) {
			decoded, err := Decode(Encode(f))
			require.NoError(t, err)
			if diff := cmp.Diff(f, decoded); diff != "" {
				t.Fatalf("decoded frame differs (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeRejectsMalformedFrames(t *testing.T) {
	_, err := Decode(nil)
	require.Error(t, err)

	_, err = Decode([]byte{0xff})
	require.Error(t, err)

	b := Encode(&Ack{Ack: prediction.Ack{Timestamp: 3}})
	_, err = Decode(b[:len(b)-2])
	require.Error(t, err)
	_, err = Decode(append(b, 1))
	require.Error(t, err)
}

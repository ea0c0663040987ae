package prediction

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/game"
	"github.com/oomph-ac/locomotion/internal"
	"github.com/oomph-ac/locomotion/resolver"
	"github.com/oomph-ac/locomotion/tag"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/stretchr/testify/require"
)

func wireMove(ts float64, st resolver.DesiredState) *Move {
	return &Move{
		Timestamp:       ts,
		DeltaTime:       0.016,
		Acceleration:    mgl32.Vec3{1, 2, 0},
		ControlRotation: game.Rotator{Pitch: -10, Yaw: 35},
		State:           st,
		End:             Transform{Location: mgl32.Vec3{5, 6, 90}},
	}
}

func TestContainerWireFormat(t *testing.T) {
	in := &Container{
		Old: wireMove(1, resolver.DesiredState{RotationMode: tag.RotationModeAiming, Stance: tag.StanceCrouching, Gait: tag.GaitRunning}),
		New: wireMove(2, resolver.DesiredState{RotationMode: DefaultRotationMode, Stance: DefaultStance, Gait: DefaultGait}),
	}
	out, err := DecodeContainer(EncodeContainer(in))
	require.NoError(t, err)
	require.Nil(t, out.Pending)

	// Only the fields sent over the wire survive.
	want := &Container{Old: wireMove(1, in.Old.State), New: wireMove(2, in.New.State)}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("decoded container mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, out.Moves(), 2)
}

func TestDefaultTagsAreNotWritten(t *testing.T) {
	defaults := EncodeContainer(&Container{New: wireMove(1, resolver.DesiredState{RotationMode: DefaultRotationMode, Stance: DefaultStance, Gait: DefaultGait})})
	custom := EncodeContainer(&Container{New: wireMove(1, resolver.DesiredState{RotationMode: tag.RotationModeAiming, Stance: DefaultStance, Gait: DefaultGait})})

	// The custom rotation mode costs its string; the defaults cost a single presence byte each.
	require.Greater(t, len(custom), len(defaults)+len(tag.RotationModeAiming))

	empty := EncodeContainer(&Container{New: wireMove(1, resolver.DesiredState{})})
	require.Equal(t, defaults, empty)
}

func TestCorruptTagDegradesToDefault(t *testing.T) {
	m := wireMove(1, resolver.DesiredState{RotationMode: tag.RotationModeAiming, Stance: tag.Tag("Status.Gait.Running"), Gait: tag.Gait})
	out, err := DecodeContainer(EncodeContainer(&Container{New: m}))
	require.NoError(t, err)
	require.Equal(t, tag.RotationModeAiming, out.New.State.RotationMode)
	require.Equal(t, DefaultStance, out.New.State.Stance)
	require.Equal(t, DefaultGait, out.New.State.Gait)
}

func TestTruncatedContainerFails(t *testing.T) {
	b := EncodeContainer(&Container{New: wireMove(1, resolver.DesiredState{Gait: tag.GaitSprinting})})
	for _, n := range []int{0, 1, len(b) / 2, len(b) - 1} {
		_, err := DecodeContainer(b[:n])
		require.Error(t, err, "length %d", n)
	}
	_, err := DecodeContainer(append(bytes.Clone(b), 0))
	require.Error(t, err)
}

func TestAckAndCorrectionWireFormat(t *testing.T) {
	a, err := DecodeAck(EncodeAck(Ack{Timestamp: 12.5}))
	require.NoError(t, err)
	require.Equal(t, 12.5, a.Timestamp)

	in := Correction{
		Timestamp: 3.25,
		Transform: Transform{
			Location:   mgl32.Vec3{1, 2, 3},
			Velocity:   mgl32.Vec3{4, 5, 6},
			Rotation:   game.Rotator{Yaw: 90},
			Mode:       config.MovementModeCustom,
			CustomMode: 2,
		},
		State: resolver.State{
			LocomotionMode: tag.LocomotionModeInAir,
			RotationMode:   tag.RotationModeVelocityDirection,
			Stance:         tag.StanceStanding,
			Gait:           tag.GaitWalking,
		},
	}
	out, err := DecodeCorrection(EncodeCorrection(in))
	require.NoError(t, err)
	require.Equal(t, in, out)

	_, err = DecodeCorrection(EncodeAck(Ack{Timestamp: 1}))
	require.Error(t, err)
}

func TestMarshalStateSymmetry(t *testing.T) {
	buf := internal.GetBuffer()
	defer internal.PutBuffer(buf)

	in := resolver.State{LocomotionMode: tag.LocomotionModeOnGround, RotationMode: tag.RotationModeAiming, Stance: tag.StanceCrouching, Gait: tag.GaitWalking}
	MarshalState(protocol.NewWriter(buf, 0), &in)

	var out resolver.State
	MarshalState(protocol.NewReader(buf, 0, false), &out)
	require.Equal(t, in, out)
	require.Zero(t, buf.Len())
}

package prediction

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/game"
	"github.com/oomph-ac/locomotion/resolver"
	"github.com/oomph-ac/locomotion/settings"
	"github.com/oomph-ac/locomotion/tag"
	"github.com/stretchr/testify/require"
)

// honestMove performs m on a reference simulation so that its end location is what the server computes.
func honestMove(t *testing.T, ref *testSim, m Move) *Move {
	require.NoError(t, ref.PerformMove(&m))
	return &m
}

func TestServerAcksMatchingMoves(t *testing.T) {
	server := NewServer(newTestSim(), settings.DefaultSettings(), nil)
	ref := newTestSim()

	m := honestMove(t, ref, Move{Timestamp: 0.016, DeltaTime: 0.016, Acceleration: mgl32.Vec3{2500}, State: runningState()})
	resp, err := server.Process(&Container{New: m})
	require.NoError(t, err)
	require.Nil(t, resp.Correction)
	require.Equal(t, &Ack{Timestamp: 0.016}, resp.Ack)
}

func TestServerCorrectsOnlyBeyondTolerance(t *testing.T) {
	server := NewServer(newTestSim(), settings.DefaultSettings(), nil)
	ref := newTestSim()

	m := honestMove(t, ref, Move{Timestamp: 0.016, DeltaTime: 0.016, Acceleration: mgl32.Vec3{2500}, State: runningState()})
	m.End.Location[0] += 1
	resp, err := server.Process(&Container{New: m})
	require.NoError(t, err)
	require.NotNil(t, resp.Ack, "an error of 1² is within tolerance")

	m = honestMove(t, ref, Move{Timestamp: 0.032, DeltaTime: 0.016, Acceleration: mgl32.Vec3{2500}, State: runningState()})
	m.End.Location[0] += 5
	resp, err = server.Process(&Container{New: m})
	require.NoError(t, err)
	require.NotNil(t, resp.Correction)
	require.Equal(t, 0.032, resp.Correction.Timestamp)
	require.InDelta(t, m.End.Location.X()-5, resp.Correction.Transform.Location.X(), 1e-4)
	require.Equal(t, tag.GaitRunning, resp.Correction.State.Gait)
}

func TestServerReResolvesIllegalState(t *testing.T) {
	sim := newTestSim()
	server := NewServer(sim, settings.DefaultSettings(), nil)
	ref := newTestSim()
	illegal := resolver.DesiredState{RotationMode: tag.RotationModeViewDirection, Stance: tag.StanceCrouching, Gait: tag.GaitSprinting}

	m := honestMove(t, ref, Move{Timestamp: 0.016, DeltaTime: 0.016, Acceleration: mgl32.Vec3{2500}, State: illegal})
	resp, err := server.Process(&Container{New: m})
	require.NoError(t, err)
	require.NotNil(t, resp.Ack, "the desired state is not compared, only where it led")
	require.Equal(t, tag.GaitRunning, sim.ResolvedState().Gait)
	require.Equal(t, illegal, m.State)

	m = honestMove(t, ref, Move{Timestamp: 0.032, DeltaTime: 0.016, Acceleration: mgl32.Vec3{2500}, State: illegal})
	m.End.Location[0] += 5
	resp, err = server.Process(&Container{New: m})
	require.NoError(t, err)
	require.NotNil(t, resp.Correction)
	require.Equal(t, tag.StanceCrouching, resp.Correction.State.Stance)
	require.Equal(t, tag.GaitRunning, resp.Correction.State.Gait)
}

func TestServerSkipsProcessedMoves(t *testing.T) {
	server := NewServer(newTestSim(), settings.DefaultSettings(), nil)
	ref := newTestSim()

	m1 := honestMove(t, ref, Move{Timestamp: 0.016, DeltaTime: 0.016, Jump: true, State: runningState()})
	m2 := honestMove(t, ref, Move{Timestamp: 0.032, DeltaTime: 0.016, State: runningState()})
	m3 := honestMove(t, ref, Move{Timestamp: 0.048, DeltaTime: 0.016, Acceleration: mgl32.Vec3{2500}, State: runningState()})

	resp, err := server.Process(&Container{New: m1})
	require.NoError(t, err)
	require.NotNil(t, resp.Ack)

	// m1 is resent as the old important move and must not be performed twice.
	resp, err = server.Process(&Container{Old: m1, New: m2})
	require.NoError(t, err)
	require.Equal(t, &Ack{Timestamp: 0.032}, resp.Ack)
	require.Equal(t, 0.032, server.LastProcessedTimestamp())

	// A resent container is answered again without performing anything.
	resp, err = server.Process(&Container{Old: m1, New: m2})
	require.NoError(t, err)
	require.Equal(t, &Ack{Timestamp: 0.032}, resp.Ack)
	require.Equal(t, 0.032, server.LastProcessedTimestamp())

	resp, err = server.Process(&Container{New: m3})
	require.NoError(t, err)
	require.NotNil(t, resp.Ack)

	// A resent move that disagrees is corrected to the frame recorded for it, not to the current state.
	wrong := *m2
	wrong.End.Location[0] += 5
	resp, err = server.Process(&Container{New: &wrong})
	require.NoError(t, err)
	require.NotNil(t, resp.Correction)
	require.Equal(t, 0.032, resp.Correction.Timestamp)
	require.Equal(t, m2.End, resp.Correction.Transform)
	require.NotEqual(t, m3.End, resp.Correction.Transform)

	resp, err = server.Process(&Container{New: &Move{Timestamp: 0.001, DeltaTime: 0.016}})
	require.NoError(t, err)
	require.Nil(t, resp.Ack)
	require.Nil(t, resp.Correction)
	require.Equal(t, 0.048, server.LastProcessedTimestamp())
}

func randomMoves(r *rand.Rand, n int) []Move {
	moves := make([]Move, 0, n)
	ts := 0.0
	gaits := []tag.Tag{tag.GaitWalking, tag.GaitRunning, tag.GaitSprinting}
	for i := 0; i < n; i++ {
		dt := 0.008 + r.Float32()*0.03
		ts += float64(dt)
		var accel mgl32.Vec3
		if r.Intn(4) != 0 {
			accel = game.AngleToDirectionXY(r.Float32()*360 - 180).Mul(2500)
		}
		moves = append(moves, Move{
			Timestamp:       ts,
			DeltaTime:       dt,
			Acceleration:    accel,
			Jump:            r.Intn(25) == 0,
			ControlRotation: game.Rotator{Yaw: r.Float32()*360 - 180},
			State: resolver.DesiredState{
				RotationMode: tag.RotationModeViewDirection,
				Stance:       tag.StanceStanding,
				Gait:         gaits[r.Intn(len(gaits))],
			},
		})
	}
	return moves
}

func TestReplayIsDeterministic(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		moves := randomMoves(rand.New(rand.NewSource(seed)), 120)

		a, b := newTestSim(), newTestSim()
		ca := NewClient(a, settings.DefaultSettings(), nil)
		cb := NewClient(b, settings.DefaultSettings(), nil)
		for _, m := range moves {
			_, err := ca.Tick(m)
			require.NoError(t, err)
			_, err = cb.Tick(m)
			require.NoError(t, err)
		}
		require.Equal(t, a.Transform(), b.Transform(), "seed %d", seed)

		// Correcting to the client's own state at an earlier move and replaying the rest lands on the
		// exact same transform.
		end := a.Transform()
		var target *Move
		i := 0
		for m := range ca.SavedMoves().All() {
			if i == ca.SavedMoves().Len()/2 {
				target = m
			}
			i++
		}
		require.NotNil(t, target)

		corr := Correction{
			Timestamp: target.Timestamp,
			Transform: target.End,
			State:     resolver.State{LocomotionMode: a.data.LocomotionModeFor(target.End.Mode, target.End.CustomMode), RotationMode: target.State.RotationMode, Stance: target.State.Stance, Gait: target.State.Gait},
		}
		require.NoError(t, ca.OnCorrection(corr))
		require.Equal(t, end, a.Transform(), "seed %d", seed)
		require.Equal(t, 1, ca.Corrections())
	}
}

func TestClientServerConverge(t *testing.T) {
	moves := randomMoves(rand.New(rand.NewSource(9)), 200)

	client := NewClient(newTestSim(), settings.DefaultSettings(), nil)
	serverSim := newTestSim()
	server := NewServer(serverSim, settings.DefaultSettings(), nil)

	for _, m := range moves {
		ct, err := client.Tick(m)
		require.NoError(t, err)
		if ct == nil {
			continue
		}
		// Serialise through the wire format like a real link would.
		decoded, err := DecodeContainer(EncodeContainer(ct))
		require.NoError(t, err)
		resp, err := server.Process(decoded)
		require.NoError(t, err)
		if resp.Correction != nil {
			require.NoError(t, client.OnCorrection(*resp.Correction))
		} else if resp.Ack != nil {
			client.OnAck(*resp.Ack)
		}
	}
	require.Zero(t, client.Corrections())
	require.LessOrEqual(t, client.SavedMoves().Len(), 1)
}

func TestStaleCorrectionIsIgnored(t *testing.T) {
	sim := newTestSim()
	client := NewClient(sim, settings.DefaultSettings(), nil)
	client.OnAck(Ack{Timestamp: 5})

	before := sim.Transform()
	require.NoError(t, client.OnCorrection(Correction{Timestamp: 4, Transform: Transform{Location: mgl32.Vec3{100, 0, 0}}}))
	require.Equal(t, before, sim.Transform())
	require.Zero(t, client.Corrections())
}

package prediction

import "github.com/oomph-ac/locomotion/resolver"

// Simulation is the character a predictor or validator drives.
type Simulation interface {
	// PerformMove resolves the move's discrete state, simulates the move and writes the resulting
	// transform to m.End.
	PerformMove(m *Move) error
	// Transform returns the current transform.
	Transform() Transform
	// SetTransform snaps the character to t.
	SetTransform(t Transform)
	// ResolvedState returns the locomotion state the last move was resolved to.
	ResolvedState() resolver.State
	// SetResolvedState applies a resolved state received from the server.
	SetResolvedState(s resolver.State)
	// Checkpoint captures the state the next move starts from that Transform and ResolvedState do not
	// carry. Restore returns the simulation to it, so that a move can be performed again exactly.
	Checkpoint() any
	Restore(v any)
}

package locomotion

// Role is the network role a component plays for its character.
type Role byte

const (
	// RoleAuthority simulates the character on the server and validates the moves of its client.
	RoleAuthority Role = iota
	// RoleAutonomousProxy is the locally controlled character of a client. It predicts its own moves.
	RoleAutonomousProxy
	// RoleSimulatedProxy is a character controlled elsewhere. It only follows replicated state.
	RoleSimulatedProxy
)

func (r Role) String() string {
	switch r {
	case RoleAuthority:
		return "authority"
	case RoleAutonomousProxy:
		return "autonomous_proxy"
	case RoleSimulatedProxy:
		return "simulated_proxy"
	}
	return "unknown"
}

// simulates reports whether the role runs the movement simulation itself.
func (r Role) simulates() bool {
	return r != RoleSimulatedProxy
}

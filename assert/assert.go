package assert

import "github.com/oomph-ac/locomotion/oerror"

// IsTrue panics with an OomphError built from message and args if ok is false. It is used for
// invariants that a validated configuration guarantees.
func IsTrue(ok bool, message string, args ...any) {
	if !ok {
		panic(oerror.New(message, args...))
	}
}

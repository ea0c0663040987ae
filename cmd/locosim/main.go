// Command locosim runs the locomotion of simulated characters across a client, a server and a proxy,
// either in lockstep over in-process loopbacks or in real time over websockets.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

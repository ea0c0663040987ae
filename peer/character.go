package peer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/game"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/movesim"
	"github.com/oomph-ac/locomotion/session"
	"github.com/oomph-ac/locomotion/settings"
	"github.com/oomph-ac/locomotion/transport"
	"github.com/sirupsen/logrus"
)

// CharacterOptions configures a Character.
type CharacterOptions struct {
	// ClientData and ServerData default to config.Default().
	ClientData *config.Data
	ServerData *config.Data
	Settings   settings.Settings

	// ClientEnv is the world of the controlling client and the proxy, ServerEnv the one of the server.
	ClientEnv movesim.Environment
	ServerEnv movesim.Environment

	Location mgl32.Vec3
	Rotation game.Rotator

	// Latency and DropEvery configure both loopbacks.
	Latency   uint64
	DropEvery uint64

	TrackFrames bool
	Log         *logrus.Logger
}

// Character is a character with its three peers connected by loopbacks, stepped in lockstep.
type Character struct {
	Client *Client
	Server *Server
	Proxy  *Proxy

	loopbacks []*transport.Loopback
}

// NewCharacter creates the peers of a character and exchanges handshakes between them.
func NewCharacter(opts CharacterOptions) (*Character, error) {
	lo := transport.LoopbackOptions{Latency: opts.Latency, DropEvery: opts.DropEvery, Log: opts.Log}
	cl, clientLink, serverClientLink := transport.NewLoopback(lo)
	pl, serverProxyLink, proxyLink := transport.NewLoopback(lo)

	component := func(data *config.Data, env movesim.Environment, role locomotion.Role) (*locomotion.Component, error) {
		return locomotion.NewComponent(locomotion.Options{
			Data:     data,
			Settings: opts.Settings,
			Env:      env,
			Role:     role,
			Location: opts.Location,
			Rotation: opts.Rotation,
			Log:      opts.Log,
		})
	}
	cc, err := component(opts.ClientData, opts.ClientEnv, locomotion.RoleAutonomousProxy)
	if err != nil {
		return nil, err
	}
	sc, err := component(opts.ServerData, opts.ServerEnv, locomotion.RoleAuthority)
	if err != nil {
		return nil, err
	}
	pc, err := component(opts.ClientData, opts.ClientEnv, locomotion.RoleSimulatedProxy)
	if err != nil {
		return nil, err
	}

	s := session.New(cc, session.Options{Settings: opts.Settings, Log: opts.Log, TrackFrames: opts.TrackFrames})
	client, err := NewClient(s, clientLink, opts.Log)
	if err != nil {
		return nil, err
	}
	server, err := NewServer(sc, opts.Settings, serverClientLink, opts.Log)
	if err != nil {
		return nil, err
	}
	if err := server.AddProxy(serverProxyLink); err != nil {
		return nil, err
	}
	return &Character{
		Client:    client,
		Server:    server,
		Proxy:     NewProxy(pc, proxyLink, opts.Log),
		loopbacks: []*transport.Loopback{cl, pl},
	}, nil
}

// Step performs a tick: the client moves, the server validates and replicates, and the proxy follows.
func (ch *Character) Step(timestamp float64, dt float32, in Input) error {
	if err := ch.Client.Step(timestamp, dt, in); err != nil {
		return err
	}
	return ch.settle(dt)
}

// Drain flushes the client and steps the server and proxy until every frame in flight was handled.
func (ch *Character) Drain(dt float32) error {
	if err := ch.Client.Flush(); err != nil {
		return err
	}
	// A frame takes Latency ticks in each direction.
	for i := uint64(0); i <= 2*ch.latency()+1; i++ {
		if err := ch.Client.Receive(); err != nil {
			return err
		}
		if err := ch.settle(dt); err != nil {
			return err
		}
	}
	return nil
}

func (ch *Character) settle(dt float32) error {
	if err := ch.Server.Step(); err != nil {
		return err
	}
	if err := ch.Proxy.Step(dt); err != nil {
		return err
	}
	for _, l := range ch.loopbacks {
		l.Advance()
	}
	return nil
}

func (ch *Character) latency() uint64 {
	return ch.loopbacks[0].Latency()
}

// Close ...
func (ch *Character) Close() error {
	_ = ch.Proxy.Close()
	_ = ch.Server.Close()
	return ch.Client.Close()
}

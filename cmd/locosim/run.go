package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/movesim"
	"github.com/oomph-ac/locomotion/peer"
	"github.com/oomph-ac/locomotion/session"
	"github.com/oomph-ac/locomotion/settings"
	"github.com/oomph-ac/locomotion/transport"
	"github.com/oomph-ac/locomotion/worker"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// runConfig is the configuration of the run command.
type runConfig struct {
	Ticks     uint64
	TickRate  uint64
	Latency   uint64
	DropEvery uint64

	Characters int
	Workers    int

	Transport string
	Addr      string

	Tree  string
	Wall  bool
	Trace string
	Rec   string

	Settings settings.Settings
	Data     *config.Data
}

func (c *cli) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run characters controlled by a scripted player.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.runConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			switch cfg.Transport {
			case "loopback":
				return c.runLoopback(cfg)
			case "websocket":
				return c.runWebsocket(ctx, cfg)
			}
			return fmt.Errorf("unknown transport %q", cfg.Transport)
		},
	}
	f := cmd.Flags()
	f.Uint64("ticks", 600, "number of moves the player performs")
	f.Uint64("tick-rate", 60, "ticks per second")
	f.Uint64("latency", 3, "one way latency in ticks (loopback)")
	f.Uint64("drop-every", 0, "drop every nth frame (loopback)")
	f.Int("characters", 1, "number of characters simulated side by side (loopback)")
	f.Int("workers", 0, "number of workers stepping characters, 0 for one per CPU")
	f.String("transport", "loopback", "loopback or websocket")
	f.String("addr", "localhost:19132", "listen address of the server (websocket)")
	f.String("tree", "", "locomotion definition file, the built-in one if empty")
	f.String("settings", "", "settings file, overriding the settings of the config file")
	f.Bool("wall", false, "put a wall in the server's world that the client does not know about")
	f.String("trace", "", "write a CSV trace of the first character's client to this file")
	f.String("record", "", "record the first character's client session to this file")
	return cmd
}

func (c *cli) runConfig() (runConfig, error) {
	cfg := runConfig{
		Ticks:      c.v.GetUint64("ticks"),
		TickRate:   c.v.GetUint64("tick-rate"),
		Latency:    c.v.GetUint64("latency"),
		DropEvery:  c.v.GetUint64("drop-every"),
		Characters: c.v.GetInt("characters"),
		Workers:    c.v.GetInt("workers"),
		Transport:  c.v.GetString("transport"),
		Addr:       c.v.GetString("addr"),
		Tree:       c.v.GetString("tree"),
		Wall:       c.v.GetBool("wall"),
		Trace:      c.v.GetString("trace"),
		Rec:        c.v.GetString("record"),
	}
	if cfg.TickRate == 0 {
		return cfg, fmt.Errorf("tick rate must be positive")
	}
	if cfg.Characters < 1 {
		return cfg, fmt.Errorf("at least one character is required")
	}
	var err error
	if cfg.Settings, err = c.settings(); err != nil {
		return cfg, err
	}
	if cfg.Data, err = config.Load(cfg.Tree); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (cfg runConfig) dt() float32 {
	return 1 / float32(cfg.TickRate)
}

func (cfg runConfig) worlds() (client, server movesim.Environment) {
	if !cfg.Wall {
		return movesim.NewFlatWorld(0), movesim.NewFlatWorld(0)
	}
	wall := movesim.Solid{Bounds: cube.Box(400, -2000, 0, 500, 2000, 500)}
	return movesim.NewFlatWorld(0), movesim.NewFlatWorld(0, wall)
}

// runLoopback steps every character in lockstep. The characters of a tick are stepped concurrently by a
// worker pool.
func (c *cli) runLoopback(cfg runConfig) error {
	chars := make([]*peer.Character, cfg.Characters)
	for i := range chars {
		clientEnv, serverEnv := cfg.worlds()
		ch, err := peer.NewCharacter(peer.CharacterOptions{
			ClientData:  cfg.Data,
			ServerData:  cfg.Data,
			Settings:    cfg.Settings,
			ClientEnv:   clientEnv,
			ServerEnv:   serverEnv,
			Location:    mgl32.Vec3{0, float32(i) * 500, movesim.DefaultCapsuleHalfHeight},
			Latency:     cfg.Latency,
			DropEvery:   cfg.DropEvery,
			TrackFrames: i == 0 && cfg.Trace != "",
			Log:         c.log,
		})
		if err != nil {
			return err
		}
		defer ch.Close()
		chars[i] = ch
	}
	if cfg.Rec != "" {
		chars[0].Client.Session().StartRecording()
	}

	pool := worker.New(cfg.Workers, c.log)
	defer pool.Close()

	script := peer.Wander(2500, 45, cfg.TickRate, 3*cfg.TickRate)
	gaits := peer.Gaits(4 * cfg.TickRate)
	errs := make([]error, len(chars))
	dt := cfg.dt()

	start := time.Now()
	for tick := uint64(0); tick < cfg.Ticks; tick++ {
		ts := float64(tick+1) * float64(dt)
		in := script(tick)
		fs := make([]func(), len(chars))
		for i, ch := range chars {
			fs[i] = func() {
				if g, ok := gaits(tick); ok {
					if err := ch.Client.SetDesiredGait(g); err != nil {
						errs[i] = err
						return
					}
				}
				errs[i] = ch.Step(ts, dt, in)
			}
		}
		if err := pool.Run(fs...); err != nil {
			return err
		}
		if err := errors.Join(errs...); err != nil {
			return err
		}
	}
	fs := make([]func(), len(chars))
	for i, ch := range chars {
		fs[i] = func() { errs[i] = ch.Drain(dt) }
	}
	if err := pool.Run(fs...); err != nil {
		return err
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if n := pool.Panics(); n != 0 {
		return fmt.Errorf("%d characters panicked", n)
	}

	for i, ch := range chars {
		srv := ch.Server.Component().Transform()
		c.log.Infof("character %d: %d corrections, server at %v, proxy at %v", i,
			ch.Client.Session().Client().Corrections(), srv.Location, ch.Proxy.Component().Transform().Location)
	}
	c.log.Infof("simulated %d ticks of %d characters in %v", cfg.Ticks, len(chars), time.Since(start))
	return c.writeOutputs(cfg, chars[0].Client.Session())
}

// runWebsocket runs the server, the client and the proxy of a single character concurrently in real time,
// connected over websockets.
func (c *cli) runWebsocket(ctx context.Context, cfg runConfig) error {
	clientLn, proxyLn := transport.NewListener(1, c.log), transport.NewListener(1, c.log)
	mux := http.NewServeMux()
	mux.Handle("/client", clientLn)
	mux.Handle("/proxy", proxyLn)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	httpSrv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go httpSrv.Serve(ln)
	defer httpSrv.Close()
	c.log.Infof("server listening on %v", ln.Addr())

	clientEnv, serverEnv := cfg.worlds()
	loc := mgl32.Vec3{0, 0, movesim.DefaultCapsuleHalfHeight}
	newComponent := func(env movesim.Environment, role locomotion.Role) (*locomotion.Component, error) {
		return locomotion.NewComponent(locomotion.Options{Data: cfg.Data, Settings: cfg.Settings, Env: env, Role: role, Location: loc, Log: c.log})
	}
	url := "ws://" + ln.Addr().String()
	dt := cfg.dt()
	interval := time.Second / time.Duration(cfg.TickRate)

	var sess *session.Session
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		comp, err := newComponent(serverEnv, locomotion.RoleAuthority)
		if err != nil {
			return err
		}
		clientLink, err := clientLn.Accept(ctx)
		if err != nil {
			return err
		}
		srv, err := peer.NewServer(comp, cfg.Settings, clientLink, c.log)
		if err != nil {
			return err
		}
		defer srv.Close()
		proxyLink, err := proxyLn.Accept(ctx)
		if err != nil {
			return err
		}
		if err := srv.AddProxy(proxyLink); err != nil {
			return err
		}
		return everyTick(ctx, interval, func() error {
			return srv.Step()
		})
	})
	g.Go(func() error {
		comp, err := newComponent(clientEnv, locomotion.RoleSimulatedProxy)
		if err != nil {
			return err
		}
		link, err := transport.Dial(ctx, url+"/proxy", c.log)
		if err != nil {
			return err
		}
		p := peer.NewProxy(comp, link, c.log)
		defer p.Close()
		return everyTick(ctx, interval, func() error {
			return p.Step(dt)
		})
	})
	g.Go(func() error {
		comp, err := newComponent(clientEnv, locomotion.RoleAutonomousProxy)
		if err != nil {
			return err
		}
		sess = session.New(comp, session.Options{Settings: cfg.Settings, Log: c.log, TrackFrames: cfg.Trace != ""})
		if cfg.Rec != "" {
			sess.StartRecording()
		}
		link, err := transport.Dial(ctx, url+"/client", c.log)
		if err != nil {
			return err
		}
		client, err := peer.NewClient(sess, link, c.log)
		if err != nil {
			return err
		}
		defer client.Close()

		script := peer.Wander(2500, 45, cfg.TickRate, 3*cfg.TickRate)
		gaits := peer.Gaits(4 * cfg.TickRate)
		var tick uint64
		err = everyTick(ctx, interval, func() error {
			if tick == cfg.Ticks {
				return errDone
			}
			if g, ok := gaits(tick); ok {
				if err := client.SetDesiredGait(g); err != nil {
					return err
				}
			}
			tick++
			return client.Step(float64(tick)*float64(dt), dt, script(tick-1))
		})
		if err != nil {
			return err
		}
		if err := client.Flush(); err != nil {
			return err
		}
		// Give the server a moment to answer the last moves.
		time.Sleep(250 * time.Millisecond)
		if err := client.Receive(); err != nil {
			return err
		}
		c.log.Infof("client done: %d corrections", sess.Client().Corrections())
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return c.writeOutputs(cfg, sess)
}

var errDone = errors.New("done")

// everyTick calls f on every tick of interval until f fails, the link closes or ctx is cancelled. A
// closed link and errDone end the loop without an error.
func everyTick(ctx context.Context, interval time.Duration, f func() error) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := f(); err != nil {
				if errors.Is(err, transport.ErrClosed) || errors.Is(err, errDone) {
					return nil
				}
				return err
			}
		}
	}
}

func (c *cli) writeOutputs(cfg runConfig, s *session.Session) error {
	if cfg.Trace != "" {
		if err := writeTrace(cfg.Trace, s.Frames()); err != nil {
			return err
		}
		c.log.Infof("wrote %d frames to %s", len(s.Frames()), cfg.Trace)
	}
	if cfg.Rec != "" {
		rec := s.StopRecording()
		if err := rec.WriteFile(cfg.Rec); err != nil {
			return err
		}
		c.log.Infof("wrote recording %v (%d events, checksum %x) to %s", rec.Session, len(rec.Events), rec.Checksum(), cfg.Rec)
	}
	return nil
}

func writeTrace(path string, frames []session.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}
	defer f.Close()
	return session.WriteCSV(f, frames, true)
}

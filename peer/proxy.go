package peer

import (
	"github.com/oomph-ac/locomotion/internal"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/transport"
	"github.com/sirupsen/logrus"
)

// Proxy is the peer of a player watching a character controlled by someone else.
type Proxy struct {
	c    *locomotion.Component
	link transport.Link
	log  *logrus.Logger
}

// NewProxy returns a proxy driving c, which must be a simulated proxy, from the snapshots received over
// link.
func NewProxy(c *locomotion.Component, link transport.Link, log *logrus.Logger) *Proxy {
	return &Proxy{c: c, link: link, log: internal.Logger(log)}
}

// Component ...
func (p *Proxy) Component() *locomotion.Component {
	return p.c
}

// Step applies the snapshots received and ticks the component.
func (p *Proxy) Step(dt float32) error {
	frames, err := p.link.Poll()
	if err != nil {
		return err
	}
	for _, f := range frames {
		switch f := f.(type) {
		case *transport.Handshake:
			if err := checkHandshake(p.c, f); err != nil {
				return err
			}
		case *transport.ViewSnapshot:
			p.c.ApplyProxyUpdate(f.ProxyUpdate)
		default:
			p.log.Warnf("peer: proxy ignoring %v frame", f.Kind())
		}
	}
	return p.c.TickProxy(dt)
}

// Close ...
func (p *Proxy) Close() error {
	return p.link.Close()
}

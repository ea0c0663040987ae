package transport

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oomph-ac/locomotion/internal"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/sirupsen/logrus"
)

const writeWait = 5 * time.Second

// WebsocketLink carries frames as binary websocket messages. A goroutine reads the connection and keeps
// the decoded frames until they are polled.
type WebsocketLink struct {
	conn *websocket.Conn
	log  *logrus.Logger

	wmu sync.Mutex

	mu    sync.Mutex
	inbox []Frame
	err   error

	closeOnce sync.Once
	done      chan struct{}
}

// NewWebsocketLink wraps an established connection.
func NewWebsocketLink(conn *websocket.Conn, log *logrus.Logger) *WebsocketLink {
	l := &WebsocketLink{conn: conn, log: internal.Logger(log), done: make(chan struct{})}
	go l.readLoop()
	return l
}

// Dial connects to a Listener at url, for example ws://localhost:19132/.
func Dial(ctx context.Context, url string, log *logrus.Logger) (*WebsocketLink, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, oerror.New("transport: dialing %s: %v", url, err)
	}
	return NewWebsocketLink(conn, log), nil
}

func (l *WebsocketLink) readLoop() {
	defer close(l.done)
	for {
		typ, payload, err := l.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				err = ErrClosed
			}
			l.mu.Lock()
			l.err = err
			l.mu.Unlock()
			return
		}
		if typ != websocket.BinaryMessage {
			l.log.Warnf("transport: discarding websocket message of type %d", typ)
			continue
		}
		f, err := Decode(payload)
		if err != nil {
			l.log.Warnf("transport: discarding frame: %v", err)
			continue
		}
		l.mu.Lock()
		l.inbox = append(l.inbox, f)
		l.mu.Unlock()
	}
}

// Send writes the frame to the connection.
func (l *WebsocketLink) Send(f Frame) error {
	l.wmu.Lock()
	defer l.wmu.Unlock()

	_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := l.conn.WriteMessage(websocket.BinaryMessage, Encode(f)); err != nil {
		if errors.Is(err, websocket.ErrCloseSent) {
			return ErrClosed
		}
		return oerror.New("transport: writing %v frame: %v", f.Kind(), err)
	}
	return nil
}

// Poll returns the frames read since the last call. Once the connection is gone and every frame read has
// been polled, Poll returns the error that ended the connection.
func (l *WebsocketLink) Poll() ([]Frame, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	frames := l.inbox
	l.inbox = nil
	if len(frames) == 0 && l.err != nil {
		return nil, l.err
	}
	return frames, nil
}

// Close sends a close message, closes the connection and waits for the read goroutine to stop.
func (l *WebsocketLink) Close() error {
	l.closeOnce.Do(func() {
		l.wmu.Lock()
		_ = l.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		l.wmu.Unlock()
		_ = l.conn.Close()
	})
	<-l.done
	return nil
}

// Listener accepts websocket links over HTTP.
type Listener struct {
	upgrader websocket.Upgrader
	links    chan *WebsocketLink
	log      *logrus.Logger
}

// NewListener returns a listener that accepts at most backlog links before Accept is called.
func NewListener(backlog int, log *logrus.Logger) *Listener {
	return &Listener{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		links: make(chan *WebsocketLink, max(backlog, 1)),
		log:   internal.Logger(log),
	}
}

// ServeHTTP upgrades the request to a websocket link.
func (l *Listener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.log.Warnf("transport: websocket upgrade failed: %v", err)
		return
	}
	link := NewWebsocketLink(conn, l.log)
	select {
	case l.links <- link:
	default:
		l.log.Warnf("transport: refusing link from %s, backlog full", r.RemoteAddr)
		_ = link.Close()
	}
}

// Accept waits for the next link.
func (l *Listener) Accept(ctx context.Context) (*WebsocketLink, error) {
	select {
	case link := <-l.links:
		return link, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

package wifiinfo

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/websocket"
)

/* WSRelay
 *
 * Every websocket client is one observer subscriber: connecting calls
 * StartObserving, disconnecting calls StopObserving. Change events from
 * the module are wrapped in a Change and broadcast to all clients by the
 * relay's Run loop, which is the only goroutine touching the socket list.
 */
type WSRelay struct {
	module *Module
	socks  []*WSCONN
	relay  chan Change
	newWs  chan *WSCONN
	done   chan struct{}
	log    logrus.FieldLogger
}

var _ Service = &WSRelay{}

func NewWSRelay(module *Module, log logrus.FieldLogger) *WSRelay {
	if log == nil {
		log = logrus.StandardLogger()
	}
	t := &WSRelay{
		module: module,
		socks:  []*WSCONN{},
		relay:  make(chan Change, 16),
		newWs:  make(chan *WSCONN),
		done:   make(chan struct{}),
		log:    log.WithField("component", "wsrelay"),
	}
	module.Emitter().AddListener(EventWifiInfoChanged, func(payload any) {
		select {
		case t.relay <- NewChange(EventWifiInfoChanged, payload):
		default:
			t.log.Warn("relay backlog full, dropping change")
		}
	})
	return t
}

func (t *WSRelay) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		go func() {
		mainloop:
			for {
				select {
				case <-t.done:
					break mainloop
				case ws := <-t.newWs:
					t.AddSock(ws)
				case v := <-t.relay:
					t.Broadcast(v)
				}
			}
			for _, sock := range t.socks {
				sock.Close()
			}
			t.socks = nil
		}()

		started <- true
		<-stop
		close(t.done)
		stopped <- true
	}()
	return nil
}

func (t *WSRelay) Broadcast(v any) {
	live := t.socks[:0]
	for _, ws := range t.socks {
		if ws.IsClosed() {
			continue
		}
		if err := websocket.JSON.Send(ws.WS, v); err != nil {
			t.log.WithError(err).Debug("websocket send failed, dropping client")
			ws.Close()
			continue
		}
		live = append(live, ws)
	}
	t.socks = live
}

// AddSock sends the client its bootstrap payload and adds it to the
// broadcast list. Runs on the relay loop, so the bootstrap always
// reaches the client before any broadcast does.
func (t *WSRelay) AddSock(ws *WSCONN) {
	if err := websocket.JSON.Send(ws.WS, ws.bootstrap); err != nil {
		t.log.WithError(err).Debug("failed to send initial payload")
		ws.Close()
		return
	}
	t.socks = append(t.socks, ws)
	t.log.WithField("clients", len(t.socks)).Debug("accepted websocket client")
}

// GetWSHandler serves one subscriber per connection. The client is sent
// the current snapshot (or null) as a bootstrap Change on connect.
// Handshakes whose Origin header fails allowOrigin are refused, a nil
// allowOrigin accepts any.
func (t *WSRelay) GetWSHandler(allowOrigin func(string) bool) *websocket.Server {
	h := websocket.Server{
		Handshake: func(_ *websocket.Config, r *http.Request) error {
			origin := r.Header.Get("Origin")
			if allowOrigin != nil && !allowOrigin(origin) {
				t.log.WithField("origin", origin).Debug("refused websocket handshake")
				return fmt.Errorf("origin %q not allowed", origin)
			}
			return nil
		},
		Handler: func(ws *websocket.Conn) {
			conn := NewWSCONN(ws)

			t.module.StartObserving()
			defer t.module.StopObserving()

			conn.bootstrap = NewChange("bootstrap", t.module.GetCurrentSnapshot(ws.Request().Context()))
			select {
			case t.newWs <- conn:
			case <-t.done:
				return
			}

			// clients never talk to us, a read only ends on disconnect
			go func() {
				var discard string
				for {
					if err := websocket.Message.Receive(ws, &discard); err != nil {
						conn.Close()
						return
					}
				}
			}()

			select {
			case <-conn.Stop: // hold the connection until stopper closes
			case <-t.done:
			}
		},
	}
	return &h
}

// Represents a websocket connection from a client
type WSCONN struct {
	WS        *websocket.Conn
	Stop      chan bool
	once      sync.Once
	bootstrap Change
}

func NewWSCONN(ws *websocket.Conn) *WSCONN {
	return &WSCONN{WS: ws, Stop: make(chan bool)}
}

func (t *WSCONN) IsClosed() bool {
	select {
	case <-t.Stop:
		return true
	default:
		return false
	}
}

func (t *WSCONN) Close() {
	t.once.Do(func() {
		close(t.Stop)
	})
}

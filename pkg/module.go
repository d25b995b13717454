/*
wifiinfo exposes the current WiFi connection (SSID, BSSID, IPv4) to a
host application, plus a polled change stream.

                 ┌──────────────────────────────────────┐
                 │  Module{}                            │
 GetCurrent ───► │  ReadSnapshot ◄── Connectivity       │
 Snapshot        │       ▲           (nl80211 / iw)     │
                 │       │                              │
 Start/Stop ───► │  Observer ── poll every interval ──┐ │
 Observing       │       │ changed?                   │ │
                 │       ▼                            │ │
                 │  ListenerRegistry ◄────────────────┘ │
                 └───────┬──────────────────────────────┘
                         │ onWifiInfoChanged
                         ▼
              listeners, WSRelay, wifictl watch

 Nothing crosses the host boundary as an error: a denied permission is
 a nil snapshot, no connection is an empty one.
*/

package wifiinfo

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

const ModuleName = "WifiInfo"

type Module struct {
	conn     Connectivity
	perm     PermissionChecker
	emitter  *ListenerRegistry
	observer *Observer
	log      logrus.FieldLogger
}

var _ Service = &Module{}

func NewModule(conn Connectivity, perm PermissionChecker, log logrus.FieldLogger, opts ...ObserverOption) *Module {
	if log == nil {
		log = logrus.StandardLogger()
	}
	emitter := NewListenerRegistry(log)
	opts = append([]ObserverOption{WithLogger(log)}, opts...)
	return &Module{
		conn:     conn,
		perm:     perm,
		emitter:  emitter,
		observer: NewObserver(conn, perm, emitter, opts...),
		log:      log.WithField("module", ModuleName),
	}
}

func (t *Module) Name() string {
	return ModuleName
}

func (t *Module) Observer() *Observer {
	return t.observer
}

func (t *Module) Emitter() *ListenerRegistry {
	return t.emitter
}

func (t *Module) canRead() bool {
	if t.perm == nil || !t.perm.HasLocationPermission() {
		return false
	}
	return t.conn != nil && t.conn.Available()
}

// GetCurrentSnapshot returns nil when location permission is missing or
// there is no connectivity capability, so callers can tell "denied"
// apart from "not connected" (an empty snapshot).
func (t *Module) GetCurrentSnapshot(ctx context.Context) *Snapshot {
	if !t.canRead() {
		t.log.Debug("snapshot requested without permission or capability")
		return nil
	}
	snap := readSnapshot(ctx, t.conn, t.log)
	return &snap
}

// GetCurrentSnapshotAsync resolves GetCurrentSnapshot on its own
// goroutine. The channel yields exactly one value and is then closed.
func (t *Module) GetCurrentSnapshotAsync(ctx context.Context) <-chan *Snapshot {
	out := make(chan *Snapshot, 1)
	go func() {
		defer close(out)
		out <- t.GetCurrentSnapshot(ctx)
	}()
	return out
}

func (t *Module) StartObserving() {
	t.observer.StartObserving()
}

func (t *Module) StopObserving() {
	t.observer.StopObserving()
}

// A Subscription pairs a change listener with one observer reference.
type Subscription struct {
	once   sync.Once
	remove func()
}

// Remove releases the observer reference and detaches the listener.
// Safe to call more than once.
func (s *Subscription) Remove() {
	s.once.Do(s.remove)
}

// AddChangeListener registers fn for EventWifiInfoChanged and starts
// observing on its behalf.
func (t *Module) AddChangeListener(fn func(Snapshot)) *Subscription {
	removeListener := t.emitter.AddListener(EventWifiInfoChanged, func(payload any) {
		if snap, ok := payload.(Snapshot); ok {
			fn(snap)
		}
	})
	t.StartObserving()
	return &Subscription{remove: func() {
		t.StopObserving()
		removeListener()
	}}
}

func (t *Module) OnHostResume() {
	t.log.Debug("host resumed")
}

func (t *Module) OnHostPause() {
	t.log.Debug("host paused")
}

// OnHostDestroy force-stops the observer and drops any event raised
// after this point.
func (t *Module) OnHostDestroy() {
	t.log.Debug("host destroyed, stopping observer")
	t.observer.Dispose()
	t.emitter.Deactivate()
}

// Run ties the module lifetime to the conductor: stopping the service
// is a host teardown.
func (t *Module) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		started <- true
		<-stop
		t.OnHostDestroy()
		stopped <- true
	}()
	return nil
}

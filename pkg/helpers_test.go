package wifiinfo

import (
	"context"
	"sync"
	"sync/atomic"
)

type fakeConnectivity struct {
	mu          sync.Mutex
	info        *ConnectionInfo
	err         error
	unavailable bool
	calls       int

	// when set, ConnectionInfo blocks until its context is done
	hang bool
}

func (f *fakeConnectivity) Available() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.unavailable
}

func (f *fakeConnectivity) ConnectionInfo(ctx context.Context) (*ConnectionInfo, error) {
	f.mu.Lock()
	f.calls++
	if f.hang {
		f.mu.Unlock()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	defer f.mu.Unlock()
	if f.info == nil {
		return nil, f.err
	}
	info := *f.info
	return &info, f.err
}

func (f *fakeConnectivity) set(info *ConnectionInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.info = info
}

func (f *fakeConnectivity) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePermission struct {
	denied atomic.Bool
}

func (f *fakePermission) HasLocationPermission() bool {
	return !f.denied.Load()
}

type emitted struct {
	event   string
	payload any
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (r *recordingEmitter) Emit(event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emitted{event, payload})
}

// gatedEmitter records like recordingEmitter but holds the first
// emission until release is closed.
type gatedEmitter struct {
	recordingEmitter
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedEmitter() *gatedEmitter {
	return &gatedEmitter{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedEmitter) Emit(event string, payload any) {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	g.recordingEmitter.Emit(event, payload)
}

func (r *recordingEmitter) snapshots() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Snapshot{}
	for _, e := range r.events {
		if s, ok := e.payload.(Snapshot); ok && e.event == EventWifiInfoChanged {
			out = append(out, s)
		}
	}
	return out
}

var homeNetwork = &ConnectionInfo{
	Interface: "wlan0",
	BSSID:     "aa:bb:cc:dd:ee:ff",
	SSID:      `"home"`,
	PackedIP:  0x0501A8C0, // 192.168.1.5
}

var homeSnapshot = Snapshot{SSID: "home", BSSID: "aa:bb:cc:dd:ee:ff", IP: "192.168.1.5"}

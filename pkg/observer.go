package wifiinfo

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

const DefaultPollInterval = 1000 * time.Millisecond

/* Observer
 *
 * Observer is a reference counted poller. The first StartObserving
 * kicks off a poll loop which re-reads the connection every interval
 * and emits EventWifiInfoChanged whenever the snapshot differs from the
 * last one emitted. Further StartObserving calls only bump the count;
 * the loop stops once StopObserving brings the count back to zero.
 *
 * Each activation gets a new generation. An iteration that finds its
 * generation stale neither emits nor reschedules, so at most one loop
 * is ever live. Deactivating also cancels the context of the read in
 * flight.
 *
 * emitMu serialises compare, store and emit across generations, so
 * listeners see changes in the order last was updated. It is separate
 * from mu so a listener can call StartObserving or StopObserving from
 * its callback.
 */
type Observer struct {
	conn     Connectivity
	perm     PermissionChecker
	emitter  EventEmitter
	clock    clock.Clock
	interval time.Duration
	log      logrus.FieldLogger

	emitMu sync.Mutex

	mu          sync.Mutex
	active      bool
	subscribers int
	last        *Snapshot // last emitted, nil until the first emission
	timer       *clock.Timer
	generation  uint64
	ctx         context.Context
	cancel      context.CancelFunc
	polls       int
}

type ObserverOption func(*Observer)

func WithClock(c clock.Clock) ObserverOption {
	return func(o *Observer) { o.clock = c }
}

func WithPollInterval(d time.Duration) ObserverOption {
	return func(o *Observer) {
		if d > 0 {
			o.interval = d
		}
	}
}

func WithLogger(log logrus.FieldLogger) ObserverOption {
	return func(o *Observer) {
		if log != nil {
			o.log = log
		}
	}
}

func NewObserver(conn Connectivity, perm PermissionChecker, emitter EventEmitter, opts ...ObserverOption) *Observer {
	o := &Observer{
		conn:     conn,
		perm:     perm,
		emitter:  emitter,
		clock:    clock.New(),
		interval: DefaultPollInterval,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.WithField("component", "observer")
	return o
}

func (t *Observer) StartObserving() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.subscribers++
	Subscribers.Inc()
	if t.subscribers > 1 {
		return
	}

	t.active = true
	t.generation++
	t.ctx, t.cancel = context.WithCancel(context.Background())
	gen := t.generation
	t.log.WithField("interval", t.interval).Debug("observer started")

	// first poll runs straight away, not after an interval
	go t.poll(gen)
}

func (t *Observer) StopObserving() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.subscribers == 0 {
		return
	}
	t.subscribers--
	Subscribers.Dec()
	if t.subscribers == 0 {
		t.deactivate()
	}
}

// Dispose stops the observer regardless of how many subscribers remain.
// It waits for an emission already in progress, so no event follows its
// return. It must not be called from a change listener.
func (t *Observer) Dispose() {
	t.mu.Lock()
	Subscribers.Sub(float64(t.subscribers))
	t.subscribers = 0
	if t.active {
		t.deactivate()
	}
	t.mu.Unlock()

	// wait out an emission in flight
	t.emitMu.Lock()
	t.emitMu.Unlock()
}

// must hold t.mu
func (t *Observer) deactivate() {
	t.active = false
	t.generation++
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.log.Debug("observer stopped")
}

func (t *Observer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *Observer) Subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.subscribers
}

// Last returns the most recently emitted snapshot, if any.
func (t *Observer) Last() (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return EmptySnapshot, false
	}
	return *t.last, true
}

func (t *Observer) poll(gen uint64) {
	ctx, ok := t.current(gen)
	if !ok {
		return
	}

	if t.perm == nil || !t.perm.HasLocationPermission() {
		PollsSkipped.WithLabelValues("permission").Inc()
		t.reschedule(gen)
		return
	}
	if t.conn == nil || !t.conn.Available() {
		PollsSkipped.WithLabelValues("unavailable").Inc()
		t.reschedule(gen)
		return
	}

	snap := readSnapshot(ctx, t.conn, t.log)
	PollsTotal.Inc()

	if !t.publish(gen, snap) {
		return
	}
	t.reschedule(gen)
}

// publish stores snap as last emitted and emits it when it differs from
// the previous one. It reports false when gen went stale.
func (t *Observer) publish(gen uint64, snap Snapshot) bool {
	t.emitMu.Lock()
	defer t.emitMu.Unlock()

	t.mu.Lock()
	if !t.active || t.generation != gen {
		t.mu.Unlock()
		return false
	}
	changed := t.last == nil || !t.last.Equal(snap)
	if changed {
		last := snap
		t.last = &last
	}
	t.mu.Unlock()

	if !changed {
		return true
	}
	t.log.WithFields(logrus.Fields{
		"ssid":  snap.SSID,
		"bssid": snap.BSSID,
		"ip":    snap.IP,
	}).Debug("wifi info changed")
	ChangesEmitted.Inc()
	if t.emitter != nil {
		t.emitter.Emit(EventWifiInfoChanged, snap)
	}
	return true
}

func (t *Observer) current(gen uint64) (context.Context, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active || t.generation != gen {
		return nil, false
	}
	return t.ctx, true
}

func (t *Observer) reschedule(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.polls++
	if !t.active || t.generation != gen {
		return
	}
	t.timer = t.clock.AfterFunc(t.interval, func() { t.poll(gen) })
}

// number of finished poll iterations, used by tests to step a mock clock
func (t *Observer) completedPolls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.polls
}

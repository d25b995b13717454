package wifiinfo

import (
	"context"
	"sync"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModule(info *ConnectionInfo) (*Module, *fakeConnectivity, *fakePermission, *clock.Mock) {
	conn := &fakeConnectivity{info: info}
	perm := &fakePermission{}
	mock := clock.NewMock()
	log, _ := test.NewNullLogger()
	return NewModule(conn, perm, log, WithClock(mock)), conn, perm, mock
}

func TestModuleName(t *testing.T) {
	m, _, _, _ := newTestModule(nil)
	assert.Equal(t, "WifiInfo", m.Name())
}

func TestModuleGetCurrentSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("connected", func(t *testing.T) {
		m, _, _, _ := newTestModule(homeNetwork)
		snap := m.GetCurrentSnapshot(ctx)
		require.NotNil(t, snap)
		assert.Equal(t, homeSnapshot, *snap)
	})

	t.Run("not connected is empty, not nil", func(t *testing.T) {
		m, _, _, _ := newTestModule(nil)
		snap := m.GetCurrentSnapshot(ctx)
		require.NotNil(t, snap)
		assert.True(t, snap.IsEmpty())
	})

	t.Run("permission denied is nil", func(t *testing.T) {
		m, conn, perm, _ := newTestModule(homeNetwork)
		perm.denied.Store(true)
		assert.Nil(t, m.GetCurrentSnapshot(ctx))
		assert.Equal(t, 0, conn.callCount())
	})

	t.Run("capability unavailable is nil", func(t *testing.T) {
		m, conn, _, _ := newTestModule(homeNetwork)
		conn.unavailable = true
		assert.Nil(t, m.GetCurrentSnapshot(ctx))
	})

	t.Run("no capability is nil", func(t *testing.T) {
		m := NewModule(nil, &fakePermission{}, nil)
		assert.Nil(t, m.GetCurrentSnapshot(ctx))
	})
}

func TestModuleGetCurrentSnapshotAsync(t *testing.T) {
	m, _, perm, _ := newTestModule(homeNetwork)

	ch := m.GetCurrentSnapshotAsync(context.Background())
	snap, ok := <-ch
	require.True(t, ok)
	require.NotNil(t, snap)
	assert.Equal(t, homeSnapshot, *snap)
	_, ok = <-ch
	assert.False(t, ok, "channel is closed after one value")

	perm.denied.Store(true)
	assert.Nil(t, <-m.GetCurrentSnapshotAsync(context.Background()))
}

func TestModuleAddChangeListener(t *testing.T) {
	m, conn, perm, mock := newTestModule(homeNetwork)
	o := m.Observer()

	// hold the first read back until both listeners are attached
	perm.denied.Store(true)

	var mu sync.Mutex
	var a, b []Snapshot
	subA := m.AddChangeListener(func(s Snapshot) {
		mu.Lock()
		a = append(a, s)
		mu.Unlock()
	})
	subB := m.AddChangeListener(func(s Snapshot) {
		mu.Lock()
		b = append(b, s)
		mu.Unlock()
	})
	assert.Equal(t, 2, o.Subscribers())
	assert.Equal(t, 2, m.Emitter().ListenerCount(EventWifiInfoChanged))
	require.Eventually(t, func() bool { return o.completedPolls() == 1 }, waitFor, tick)

	perm.denied.Store(false)
	mock.Add(DefaultPollInterval)
	require.Eventually(t, func() bool { return o.completedPolls() == 2 }, waitFor, tick)

	subA.Remove()
	subA.Remove()
	assert.Equal(t, 1, o.Subscribers())
	assert.True(t, o.Active())

	conn.set(nil)
	mock.Add(DefaultPollInterval)
	require.Eventually(t, func() bool { return o.completedPolls() == 3 }, waitFor, tick)

	subB.Remove()
	assert.False(t, o.Active())
	assert.Equal(t, 0, m.Emitter().ListenerCount(EventWifiInfoChanged))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Snapshot{homeSnapshot}, a)
	assert.Equal(t, []Snapshot{homeSnapshot, EmptySnapshot}, b)
}

func TestModuleListenerMayUnsubscribeFromCallback(t *testing.T) {
	m, _, _, _ := newTestModule(homeNetwork)

	got := make(chan Snapshot, 1)
	var sub *Subscription
	var once sync.Once
	ready := make(chan struct{})
	sub = m.AddChangeListener(func(s Snapshot) {
		<-ready
		once.Do(func() {
			sub.Remove()
			got <- s
		})
	})
	close(ready)

	assert.Equal(t, homeSnapshot, <-got)
	assert.False(t, m.Observer().Active())
}

func TestModuleOnHostDestroy(t *testing.T) {
	m, _, _, _ := newTestModule(homeNetwork)
	m.OnHostResume()
	m.OnHostPause()

	m.StartObserving()
	m.StartObserving()
	assert.True(t, m.Observer().Active())

	m.OnHostDestroy()
	assert.False(t, m.Observer().Active())
	assert.Equal(t, 0, m.Observer().Subscribers())

	// events raised after teardown are dropped
	called := false
	m.Emitter().AddListener(EventWifiInfoChanged, func(any) { called = true })
	m.Emitter().Emit(EventWifiInfoChanged, homeSnapshot)
	assert.False(t, called)
}

func TestModuleRunStopsObserverOnShutdown(t *testing.T) {
	m, _, _, _ := newTestModule(homeNetwork)
	started, stopped := make(chan bool), make(chan bool)
	stop := make(chan context.Context)

	require.NoError(t, m.Run(started, stopped, stop))
	<-started
	m.StartObserving()

	stop <- context.Background()
	<-stopped
	assert.False(t, m.Observer().Active())
}

func TestModuleLogsWithModuleField(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	m := NewModule(nil, staticPermission(false), log)

	m.OnHostPause()
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, ModuleName, hook.LastEntry().Data["module"])
}

type staticPermission bool

func (s staticPermission) HasLocationPermission() bool { return bool(s) }

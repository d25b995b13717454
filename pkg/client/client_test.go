package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	wifiinfo "github.com/dogeorg/wifiinfo/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDaemon(t *testing.T, routes map[string]string) *httptest.Server {
	mux := http.NewServeMux()
	for pattern, body := range routes {
		body := body
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetSnapshot(t *testing.T) {
	srv := newDaemon(t, map[string]string{
		"GET /wifi": `{"ssid":"home","bssid":"aa:bb:cc:dd:ee:ff","ip":"192.168.1.5"}`,
	})

	snap, err := New(srv.URL + "/").GetSnapshot(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, wifiinfo.Snapshot{SSID: "home", BSSID: "aa:bb:cc:dd:ee:ff", IP: "192.168.1.5"}, *snap)
}

func TestGetSnapshotDenied(t *testing.T) {
	srv := newDaemon(t, map[string]string{"GET /wifi": `null`})

	snap, err := New(srv.URL).GetSnapshot(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestGetSnapshotHTTPError(t *testing.T) {
	srv := newDaemon(t, map[string]string{})

	_, err := New(srv.URL).GetSnapshot(context.Background())
	assert.Error(t, err)
}

func TestObserverCalls(t *testing.T) {
	srv := newDaemon(t, map[string]string{
		"GET /wifi/observer":        `{"active":false,"subscribers":0,"last":null}`,
		"POST /wifi/observer/start": `{"active":true,"subscribers":1,"last":null}`,
		"POST /wifi/observer/stop":  `{"active":false,"subscribers":0,"last":{"ssid":"home","bssid":"aa:bb:cc:dd:ee:ff","ip":"192.168.1.5"}}`,
	})
	c := New(srv.URL)
	ctx := context.Background()

	status, err := c.ObserverStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.Active)

	status, err = c.StartObserving(ctx)
	require.NoError(t, err)
	assert.True(t, status.Active)
	assert.Equal(t, 1, status.Subscribers)

	status, err = c.StopObserving(ctx)
	require.NoError(t, err)
	require.NotNil(t, status.Last)
	assert.Equal(t, "home", status.Last.SSID)
}

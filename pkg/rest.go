package wifiinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

func RESTAPI(config ServerConfig, module *Module, ws *WSRelay, log logrus.FieldLogger) *api {
	if log == nil {
		log = logrus.StandardLogger()
	}
	a := &api{
		mux:    http.NewServeMux(),
		config: config,
		module: module,
		ws:     ws,
		log:    log.WithField("component", "rest"),
	}

	routes := map[string]http.HandlerFunc{
		"GET /wifi":                 a.getWifi,
		"GET /wifi/observer":        a.getObserver,
		"POST /wifi/observer/start": a.startObserver,
		"POST /wifi/observer/stop":  a.stopObserver,
	}

	for p, h := range routes {
		a.mux.HandleFunc(p, h)
	}
	if ws != nil {
		a.mux.Handle("/ws/wifi", ws.GetWSHandler(config.OriginAllowed))
	}
	if config.Metrics {
		a.mux.Handle("GET /metrics", promhttp.Handler())
	}
	a.log.Debugf("Loaded %d API routes", len(routes))

	return a
}

type api struct {
	mux    *http.ServeMux
	config ServerConfig
	module *Module
	ws     *WSRelay
	log    logrus.FieldLogger
}

var _ Service = &api{}

func (t *api) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowOriginFunc: t.config.OriginAllowed,
		AllowedMethods:  []string{http.MethodGet, http.MethodPost},
	})
	return c.Handler(t.checkOrigin(t.mux))
}

// checkOrigin refuses browser requests from origins outside the allow
// list. CORS headers alone only hide the response, a simple POST would
// still reach the handler.
func (t *api) checkOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if !t.config.OriginAllowed(origin) {
			t.sendErrorResponse(w, http.StatusForbidden, fmt.Sprintf("origin %q not allowed", origin))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (t *api) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		srv := &http.Server{Addr: fmt.Sprintf("%s:%d", t.config.Bind, t.config.Port), Handler: t.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != http.ErrServerClosed {
				t.log.Fatalf("HTTP server ListenAndServe: %v", err)
			}
		}()

		started <- true
		ctx := <-stop
		srv.Shutdown(ctx)
		stopped <- true
	}()
	return nil
}

// null when permission is denied, an empty snapshot when not connected
func (t *api) getWifi(w http.ResponseWriter, r *http.Request) {
	t.sendResponse(w, t.module.GetCurrentSnapshot(r.Context()))
}

type observerStatus struct {
	Active      bool      `json:"active"`
	Subscribers int       `json:"subscribers"`
	Last        *Snapshot `json:"last"`
}

func (t *api) observerStatus() observerStatus {
	o := t.module.Observer()
	status := observerStatus{
		Active:      o.Active(),
		Subscribers: o.Subscribers(),
	}
	if last, ok := o.Last(); ok {
		status.Last = &last
	}
	return status
}

func (t *api) getObserver(w http.ResponseWriter, r *http.Request) {
	t.sendResponse(w, t.observerStatus())
}

func (t *api) startObserver(w http.ResponseWriter, r *http.Request) {
	t.module.StartObserving()
	t.sendResponse(w, t.observerStatus())
}

func (t *api) stopObserver(w http.ResponseWriter, r *http.Request) {
	t.module.StopObserving()
	t.sendResponse(w, t.observerStatus())
}

func (t *api) sendResponse(w http.ResponseWriter, payload any) {
	// note: w.Header after this, so we can call sendError
	b, err := json.Marshal(payload)
	if err != nil {
		t.sendErrorResponse(w, http.StatusInternalServerError, fmt.Sprintf("in json.Marshal: %s", err.Error()))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(b)
}

func (t *api) sendErrorResponse(w http.ResponseWriter, code int, message string) {
	t.log.Warnf("[!] %d: %s", code, message)
	payload := fmt.Sprintf("{\"error\":{\"code\":%d,\"message\":%q}}", code, message)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	w.Write([]byte(payload))
}

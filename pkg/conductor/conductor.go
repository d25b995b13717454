// Package conductor starts a set of services in order, waits for a stop
// request (or a signal) and stops them again in reverse order.
package conductor

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// A Service signals on started once it is up, then waits for a context
// on stop and signals on stopped when it has shut down. Run must not
// block.
type Service interface {
	Run(started, stopped chan bool, stop chan context.Context) error
}

type serviceEntry struct {
	name    string
	svc     Service
	started chan bool
	stopped chan bool
	stop    chan context.Context
}

type Conductor struct {
	services    []*serviceEntry
	hookSignals bool
	noisy       bool
	timeout     time.Duration
	afterStart  []func()
	log         logrus.FieldLogger

	stopOnce sync.Once
	stopReq  chan struct{}
}

type Option func(*Conductor)

// HookSignals stops the conductor on SIGINT or SIGTERM.
func HookSignals() Option {
	return func(c *Conductor) { c.hookSignals = true }
}

// Noisy logs every service transition at info level.
func Noisy() Option {
	return func(c *Conductor) { c.noisy = true }
}

func ShutdownTimeout(d time.Duration) Option {
	return func(c *Conductor) { c.timeout = d }
}

// AfterStart runs fn once every service reported started.
func AfterStart(fn func()) Option {
	return func(c *Conductor) { c.afterStart = append(c.afterStart, fn) }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Conductor) { c.log = log }
}

func NewConductor(opts ...Option) *Conductor {
	c := &Conductor{
		timeout: 10 * time.Second,
		log:     logrus.StandardLogger(),
		stopReq: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("component", "conductor")
	return c
}

func (c *Conductor) Service(name string, svc Service) {
	c.services = append(c.services, &serviceEntry{
		name:    name,
		svc:     svc,
		started: make(chan bool),
		stopped: make(chan bool, 1),
		stop:    make(chan context.Context, 1),
	})
}

func (c *Conductor) say(format string, args ...any) {
	if c.noisy {
		c.log.Infof(format, args...)
	} else {
		c.log.Debugf(format, args...)
	}
}

// Stop asks a running conductor to shut everything down.
func (c *Conductor) Stop() {
	c.stopOnce.Do(func() { close(c.stopReq) })
}

// Start brings services up in registration order. The returned channel
// is closed after every started service has stopped.
func (c *Conductor) Start() chan bool {
	done := make(chan bool)

	var sig chan os.Signal
	if c.hookSignals {
		sig = make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	}

	go func() {
		defer close(done)
		if sig != nil {
			defer signal.Stop(sig)
		}

		running := []*serviceEntry{}
		failed := false
		for _, s := range c.services {
			c.say("starting %s", s.name)
			if err := s.svc.Run(s.started, s.stopped, s.stop); err != nil {
				c.log.WithError(fmt.Errorf("%s: %w", s.name, err)).Error("service failed to start")
				failed = true
				break
			}
			<-s.started
			running = append(running, s)
			c.say("%s started", s.name)
		}

		if !failed {
			for _, fn := range c.afterStart {
				fn()
			}
			select {
			case s := <-sig:
				c.say("received %s, shutting down", s)
			case <-c.stopReq:
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		for i := len(running) - 1; i >= 0; i-- {
			s := running[i]
			c.say("stopping %s", s.name)
			s.stop <- ctx
			select {
			case <-s.stopped:
				c.say("%s stopped", s.name)
			case <-ctx.Done():
				c.log.Warnf("%s did not stop in time", s.name)
			}
		}
	}()

	return done
}

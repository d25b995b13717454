package main

import (
	"github.com/coreos/go-systemd/v22/daemon"
	wifiinfo "github.com/dogeorg/wifiinfo/pkg"
	"github.com/dogeorg/wifiinfo/pkg/conductor"
	network_wifi "github.com/dogeorg/wifiinfo/pkg/system/network/wifi"
	"github.com/dogeorg/wifiinfo/pkg/system/permission"
	"github.com/dogeorg/wifiinfo/pkg/version"
	"github.com/sirupsen/logrus"
)

type server struct {
	config wifiinfo.ServerConfig
}

func Server(config wifiinfo.ServerConfig) server {
	return server{config}
}

func (t server) Start() {
	log := logrus.New()
	if t.config.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	log.WithField("release", version.GetRelease().Release).Info("starting wifiinfod")

	/* ----------------------------------------------------------------------- */
	// Set up our system interfaces so we can talk to the host OS

	var perm wifiinfo.PermissionChecker = permission.Static(true)
	var grant *permission.GrantFile
	if t.config.GrantFile != "" {
		g, err := permission.NewGrantFile(t.config.GrantFile, log)
		if err != nil {
			log.Fatalf("Couldn't watch grant file %s: %v", t.config.GrantFile, err)
		}
		grant = g
		perm = g
	}

	conn := network_wifi.NewConnectivity(t.config.Interface, log)

	/* ----------------------------------------------------------------------- */
	// Set up the module, the host for the observer

	module := wifiinfo.NewModule(conn, perm, log, wifiinfo.WithPollInterval(t.config.PollInterval))
	if t.config.Metrics {
		wifiinfo.InitMetrics(nil)
	}

	/* ----------------------------------------------------------------------- */
	// Setup our external APIs. REST, Websockets

	wsh := wifiinfo.NewWSRelay(module, log)
	rest := wifiinfo.RESTAPI(t.config, module, wsh, log)

	/* ----------------------------------------------------------------------- */
	// Create a conductor to manage all the above services startup/shutdown

	opts := []conductor.Option{
		conductor.HookSignals(),
		conductor.WithLogger(log),
		conductor.AfterStart(func() {
			if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
				log.WithError(err).Warn("sd_notify failed")
			}
		}),
	}
	if t.config.Verbose {
		opts = append(opts, conductor.Noisy())
	}
	c := conductor.NewConductor(opts...)

	if grant != nil {
		c.Service("Permission Watcher", grant)
	}
	c.Service("WifiInfo", module)
	c.Service("WSock Relay", wsh)
	c.Service("REST API", rest)
	<-c.Start()
}

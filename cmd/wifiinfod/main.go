package main

import (
	"flag"
	"os"
	"time"

	wifiinfo "github.com/dogeorg/wifiinfo/pkg"
	"github.com/sirupsen/logrus"
)

func main() {
	var port int
	var bind string
	var iface string
	var interval time.Duration
	var grantFile string
	var configFile string
	var origins string
	var noMetrics bool
	var verbose bool
	var help bool

	defaults := wifiinfo.DefaultServerConfig()

	flag.IntVar(&port, "port", defaults.Port, "REST API Port")
	flag.StringVar(&bind, "addr", defaults.Bind, "Address to bind to")
	flag.StringVar(&iface, "iface", "", "Wifi interface to report on (default: first associated)")
	flag.DurationVar(&interval, "interval", defaults.PollInterval, "Observer poll interval")
	flag.StringVar(&grantFile, "grant-file", "", "Location permission is granted while this file exists (default: always granted)")
	flag.StringVar(&configFile, "config", "", "YAML config file, flags override its values")
	flag.StringVar(&origins, "allowed-origins", "", "Comma separated browser origins allowed to use the API (default: none)")
	flag.BoolVar(&noMetrics, "no-metrics", false, "Disable the /metrics endpoint")
	flag.BoolVar(&verbose, "v", false, "Be verbose")
	flag.BoolVar(&help, "h", false, "Get help")
	flag.Parse()

	if help {
		flag.Usage()
		os.Exit(0)
	}

	config := defaults
	if configFile != "" {
		c, err := wifiinfo.LoadConfigFile(configFile, defaults)
		if err != nil {
			logrus.Fatalf("Couldn't load config: %v", err)
		}
		config = c
	}

	// Only flags given on the command line override the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			config.Port = port
		case "addr":
			config.Bind = bind
		case "iface":
			config.Interface = iface
		case "interval":
			config.PollInterval = interval
		case "grant-file":
			config.GrantFile = grantFile
		case "allowed-origins":
			config.AllowedOrigins = wifiinfo.ParseOrigins(origins)
		case "no-metrics":
			config.Metrics = !noMetrics
		case "v":
			config.Verbose = verbose
		}
	})

	srv := Server(config)
	srv.Start()
}

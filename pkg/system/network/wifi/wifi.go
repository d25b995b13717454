package network_wifi

import (
	"context"
	"net"

	wifiinfo "github.com/dogeorg/wifiinfo/pkg"
	psnet "github.com/shirou/gopsutil/v4/net"
	"github.com/sirupsen/logrus"
)

// NewConnectivity prefers nl80211 and falls back to the iw tool when no
// nl80211 client can be opened (eg: missing kernel support, containers).
func NewConnectivity(interfaceName string, log logrus.FieldLogger) wifiinfo.Connectivity {
	if log == nil {
		log = logrus.StandardLogger()
	}

	nl := NewNL80211Connectivity(interfaceName, log)
	if nl.Available() {
		log.Debug("using nl80211 for wifi connection info")
		return nl
	}

	log.Info("nl80211 unavailable, falling back to iw")
	return NewIWConnectivity(interfaceName, log)
}

// addressLookup returns the first IPv4 address configured on an interface,
// or nil if there is none.
type addressLookup func(ctx context.Context, interfaceName string) (net.IP, error)

func interfaceIPv4(ctx context.Context, interfaceName string) (net.IP, error) {
	ifaces, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Name != interfaceName {
			continue
		}
		for _, addr := range iface.Addrs {
			ip, _, err := net.ParseCIDR(addr.Addr)
			if err != nil {
				ip = net.ParseIP(addr.Addr)
			}
			if ip.To4() != nil {
				return ip, nil
			}
		}
	}
	return nil, nil
}

func packedAddress(ctx context.Context, lookup addressLookup, interfaceName string, log logrus.FieldLogger) uint32 {
	ip, err := lookup(ctx, interfaceName)
	if err != nil {
		log.WithError(err).WithField("interface", interfaceName).Debug("could not read interface address")
		return 0
	}
	return wifiinfo.PackIPv4(ip)
}

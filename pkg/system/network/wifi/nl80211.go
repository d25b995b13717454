package network_wifi

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	wifiinfo "github.com/dogeorg/wifiinfo/pkg"
	"github.com/mdlayher/wifi"
	"github.com/sirupsen/logrus"
)

var _ wifiinfo.Connectivity = &NL80211Connectivity{}

// the subset of *wifi.Client we use
type nl80211Client interface {
	Interfaces() ([]*wifi.Interface, error)
	BSS(ifi *wifi.Interface) (*wifi.BSS, error)
	Close() error
}

type NL80211Connectivity struct {
	// Restrict lookups to this interface, any station interface if empty.
	InterfaceName string

	dial   func() (nl80211Client, error)
	lookup addressLookup
	log    logrus.FieldLogger

	// set once a client has been opened, cleared when a dial fails
	reachable atomic.Bool
}

func NewNL80211Connectivity(interfaceName string, log logrus.FieldLogger) *NL80211Connectivity {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &NL80211Connectivity{
		InterfaceName: interfaceName,
		dial: func() (nl80211Client, error) {
			return wifi.New()
		},
		lookup: interfaceIPv4,
		log:    log.WithField("component", "nl80211"),
	}
}

// Available probes nl80211 once and then trusts ConnectionInfo to notice
// when it goes away, so a poll opens a single netlink socket.
func (t *NL80211Connectivity) Available() bool {
	if t.reachable.Load() {
		return true
	}
	c, err := t.dial()
	if err != nil {
		return false
	}
	c.Close()
	t.reachable.Store(true)
	return true
}

// ConnectionInfo reports the first associated station interface. No
// association anywhere is not an error: it returns nil, nil.
func (t *NL80211Connectivity) ConnectionInfo(ctx context.Context) (*wifiinfo.ConnectionInfo, error) {
	c, err := t.dial()
	if err != nil {
		t.reachable.Store(false)
		return nil, fmt.Errorf("%w: %v", wifiinfo.ErrUnavailable, err)
	}
	t.reachable.Store(true)
	defer c.Close()

	ifaces, err := c.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list wifi interfaces: %w", err)
	}

	for _, ifi := range ifaces {
		if t.InterfaceName != "" && ifi.Name != t.InterfaceName {
			continue
		}
		// Ignore anything that isn't a client, ie: APs, monitors
		if ifi.Type != wifi.InterfaceTypeStation {
			continue
		}

		bss, err := c.BSS(ifi)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("query bss on %s: %w", ifi.Name, err)
		}
		if bss.Status != wifi.BSSStatusAssociated {
			continue
		}

		return &wifiinfo.ConnectionInfo{
			Interface: ifi.Name,
			BSSID:     bss.BSSID.String(),
			SSID:      bss.SSID,
			PackedIP:  packedAddress(ctx, t.lookup, ifi.Name, t.log),
		}, nil
	}

	return nil, nil
}

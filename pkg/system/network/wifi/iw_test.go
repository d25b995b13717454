package network_wifi

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"

	wifiinfo "github.com/dogeorg/wifiinfo/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const iwDevOutput = `phy#1
	Interface wlan1
		ifindex 5
		wdev 0x100000001
		addr 02:00:00:00:01:00
		type AP
		txpower 20.00 dBm
phy#0
	Unnamed/non-netdev interface
		wdev 0x2
		addr 3c:a9:f4:00:00:01
		type P2P-device
	Interface wlp2s0
		ifindex 3
		wdev 0x1
		addr 3c:a9:f4:00:00:00
		ssid home
		type managed
		channel 36 (5180 MHz), width: 80 MHz, center1: 5210 MHz
`

const iwLinkConnected = `Connected to AA:BB:CC:DD:EE:FF (on wlp2s0)
	SSID: home network
	freq: 5180
	RX: 123456 bytes (789 packets)
	TX: 12345 bytes (78 packets)
	signal: -52 dBm
	tx bitrate: 866.7 MBit/s
`

func TestParseIWDevOutput(t *testing.T) {
	assert.Equal(t, []string{"wlp2s0"}, parseIWDevOutput(iwDevOutput))
	assert.Empty(t, parseIWDevOutput(""))
}

func TestParseIWLinkOutput(t *testing.T) {
	info := parseIWLinkOutput(iwLinkConnected)
	require.NotNil(t, info)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", info.BSSID, "hardware address is kept as printed")
	assert.Equal(t, "home network", info.SSID)

	assert.Nil(t, parseIWLinkOutput("Not connected.\n"))
	assert.Nil(t, parseIWLinkOutput(""))
}

func fakeIW(outputs map[string]string) func(ctx context.Context, args ...string) (string, error) {
	return func(ctx context.Context, args ...string) (string, error) {
		out, ok := outputs[strings.Join(args, " ")]
		if !ok {
			return "", errors.New("exit status 237")
		}
		return out, nil
	}
}

func fixedAddress(ip string) addressLookup {
	return func(ctx context.Context, name string) (net.IP, error) {
		return net.ParseIP(ip), nil
	}
}

func TestIWConnectivity(t *testing.T) {
	iw := NewIWConnectivity("", nil)
	iw.run = fakeIW(map[string]string{
		"dev":             iwDevOutput,
		"dev wlp2s0 link": iwLinkConnected,
	})
	iw.lookup = fixedAddress("192.168.1.5")

	info, err := iw.ConnectionInfo(context.Background())
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "wlp2s0", info.Interface)
	assert.Equal(t, "192.168.1.5", wifiinfo.FormatPackedIPv4(info.PackedIP))

	snap := wifiinfo.ReadSnapshot(context.Background(), iw)
	assert.Equal(t, wifiinfo.Snapshot{SSID: "home network", BSSID: "AA:BB:CC:DD:EE:FF", IP: "192.168.1.5"}, snap)
}

func TestIWConnectivityNotConnected(t *testing.T) {
	iw := NewIWConnectivity("wlan0", nil)
	iw.run = fakeIW(map[string]string{"dev wlan0 link": "Not connected.\n"})
	iw.lookup = fixedAddress("10.0.0.2")

	info, err := iw.ConnectionInfo(context.Background())
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestIWConnectivityUnavailable(t *testing.T) {
	iw := NewIWConnectivity("", nil)
	iw.run = fakeIW(nil)

	_, err := iw.ConnectionInfo(context.Background())
	assert.ErrorIs(t, err, wifiinfo.ErrUnavailable)
	assert.True(t, wifiinfo.ReadSnapshot(context.Background(), iw).IsEmpty())
}

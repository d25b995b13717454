package wifiinfo

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/sirupsen/logrus"
)

// ReadSnapshot queries conn and normalises the result. Any failure,
// missing connection or missing BSSID yields EmptySnapshot; errors are
// logged and never returned.
func ReadSnapshot(ctx context.Context, conn Connectivity) Snapshot {
	return readSnapshot(ctx, conn, logrus.StandardLogger())
}

func readSnapshot(ctx context.Context, conn Connectivity, log logrus.FieldLogger) Snapshot {
	if conn == nil {
		return EmptySnapshot
	}

	info, err := conn.ConnectionInfo(ctx)
	if err != nil {
		log.WithError(err).Debug("connection info query failed")
		return EmptySnapshot
	}
	if info == nil || info.BSSID == "" {
		return EmptySnapshot
	}

	return Snapshot{
		SSID:  strings.ReplaceAll(info.SSID, `"`, ""),
		BSSID: info.BSSID,
		IP:    FormatPackedIPv4(info.PackedIP),
	}
}

// FormatPackedIPv4 renders a packed address whose first octet lives in
// the least significant byte, ie: 0x0100007F is "127.0.0.1".
func FormatPackedIPv4(ip uint32) string {
	return fmt.Sprintf("%d.%d.%d.%d",
		ip&0xff,
		ip>>8&0xff,
		ip>>16&0xff,
		ip>>24&0xff)
}

// PackIPv4 is the inverse of FormatPackedIPv4. Anything that is not an
// IPv4 address packs to 0.
func PackIPv4(ip net.IP) uint32 {
	v4 := ip.To4()
	if v4 == nil {
		return 0
	}
	return uint32(v4[0]) | uint32(v4[1])<<8 | uint32(v4[2])<<16 | uint32(v4[3])<<24
}

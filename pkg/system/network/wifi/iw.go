package network_wifi

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	wifiinfo "github.com/dogeorg/wifiinfo/pkg"
	"github.com/sirupsen/logrus"
)

var _ wifiinfo.Connectivity = &IWConnectivity{}

// IWConnectivity reads the current association by running the iw tool.
type IWConnectivity struct {
	InterfaceName string

	run    func(ctx context.Context, args ...string) (string, error)
	lookup addressLookup
	log    logrus.FieldLogger
}

func NewIWConnectivity(interfaceName string, log logrus.FieldLogger) *IWConnectivity {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &IWConnectivity{
		InterfaceName: interfaceName,
		run:           runIW,
		lookup:        interfaceIPv4,
		log:           log.WithField("component", "iw"),
	}
}

func runIW(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "iw", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (t *IWConnectivity) Available() bool {
	_, err := exec.LookPath("iw")
	return err == nil
}

func (t *IWConnectivity) ConnectionInfo(ctx context.Context) (*wifiinfo.ConnectionInfo, error) {
	ifaces := []string{t.InterfaceName}
	if t.InterfaceName == "" {
		out, err := t.run(ctx, "dev")
		if err != nil {
			return nil, fmt.Errorf("%w: iw dev: %v", wifiinfo.ErrUnavailable, err)
		}
		ifaces = parseIWDevOutput(out)
	}

	for _, iface := range ifaces {
		out, err := t.run(ctx, "dev", iface, "link")
		if err != nil {
			t.log.WithError(err).WithField("interface", iface).Debug("iw link failed")
			continue
		}

		link := parseIWLinkOutput(out)
		if link == nil {
			continue
		}
		link.Interface = iface
		link.PackedIP = packedAddress(ctx, t.lookup, iface, t.log)
		return link, nil
	}

	return nil, nil
}

var (
	iwInterfaceRegex = regexp.MustCompile(`(?m)^\s*Interface\s+(\S+)`)
	iwTypeRegex      = regexp.MustCompile(`^\s*type\s+(\S+)`)
	iwConnectedRegex = regexp.MustCompile(`(?m)^Connected to ([0-9A-Fa-f:]{17})`)
	iwSSIDRegex      = regexp.MustCompile(`(?m)^\s*SSID: (.*)$`)
)

// parseIWDevOutput lists the managed (station) interfaces from `iw dev`.
func parseIWDevOutput(output string) []string {
	var names []string
	blocks := iwInterfaceRegex.FindAllStringSubmatchIndex(output, -1)

	for i, m := range blocks {
		name := output[m[2]:m[3]]
		end := len(output)
		if i+1 < len(blocks) {
			end = blocks[i+1][0]
		}

		managed := true
		for _, line := range strings.Split(output[m[1]:end], "\n") {
			if typ := iwTypeRegex.FindStringSubmatch(line); typ != nil {
				managed = typ[1] == "managed"
			}
		}
		if managed {
			names = append(names, name)
		}
	}
	return names
}

// parseIWLinkOutput returns nil for "Not connected." or anything without
// a BSSID.
func parseIWLinkOutput(output string) *wifiinfo.ConnectionInfo {
	bssid := iwConnectedRegex.FindStringSubmatch(output)
	if len(bssid) < 2 {
		return nil
	}

	info := &wifiinfo.ConnectionInfo{
		BSSID: bssid[1],
	}
	if ssid := iwSSIDRegex.FindStringSubmatch(output); len(ssid) > 1 {
		info.SSID = strings.TrimRight(ssid[1], "\r")
	}
	return info
}

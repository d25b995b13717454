package wifiinfo

import (
	"context"
	"errors"
)

// see ./system/ for implementations

// ErrUnavailable is returned by a Connectivity that cannot be used on
// this host at all (no wifi stack, missing tooling).
var ErrUnavailable = errors.New("connectivity capability unavailable")

// Query the platform for the currently associated wifi network.
// A nil *ConnectionInfo with a nil error means "no active connection".
type Connectivity interface {
	Available() bool
	ConnectionInfo(ctx context.Context) (*ConnectionInfo, error)
}

// Reports whether the caller is allowed to see location-bearing
// network data (SSID/BSSID).
type PermissionChecker interface {
	HasLocationPermission() bool
}

// A long running component supervised by the conductor.
type Service interface {
	Run(started, stopped chan bool, stop chan context.Context) error
}

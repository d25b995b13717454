package wifiinfo

// Snapshot captures the active WiFi connection at one point in time.
// The zero value means "no active connection". Snapshots are compared
// by value and are never mutated, only replaced.
type Snapshot struct {
	SSID  string `json:"ssid"`
	BSSID string `json:"bssid"`
	IP    string `json:"ip"`
}

// EmptySnapshot is returned whenever the platform reports nothing usable.
var EmptySnapshot = Snapshot{}

func (s Snapshot) Equal(o Snapshot) bool {
	return s == o
}

func (s Snapshot) IsEmpty() bool {
	return s == EmptySnapshot
}

// ConnectionInfo is the raw result of a connectivity query, before
// normalisation into a Snapshot.
type ConnectionInfo struct {
	Interface string
	// BSSID is empty when the connection has no hardware address.
	BSSID string
	// SSID may be wrapped in quotes by the platform, or empty if unknown.
	SSID string
	// PackedIP holds the IPv4 address with the first octet in the least
	// significant byte.
	PackedIP uint32
}

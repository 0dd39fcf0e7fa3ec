package discovery

import (
	"fmt"
	"time"
)

// Instance represents an ampwatch live feed advertised on the network
type Instance struct {
	// Name is the mDNS service instance name (e.g., "ampwatch-kitchen")
	Name string

	// Hostname is the mDNS hostname of the advertising host (e.g., "pi.local.")
	Hostname string

	// IP is the IPv4 address, or IPv6 when no IPv4 address was announced
	IP string

	// Port is the HTTP port of the feed
	Port int

	// Metadata contains the TXT record data
	// Advertised fields: "version=ampwatch/...", "path=/ws"
	Metadata map[string]string

	// DiscoveredAt is when the instance was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the instance
func (i *Instance) String() string {
	return fmt.Sprintf("ampwatch %s (%s) at %s", i.Name, i.Hostname, i.hostPort())
}

// BaseURL returns the HTTP base URL for the instance
func (i *Instance) BaseURL() string {
	return "http://" + i.hostPort()
}

// FeedURL returns the WebSocket live feed URL
func (i *Instance) FeedURL() string {
	path := i.GetMetadata("path")
	if path == "" {
		path = DefaultFeedPath
	}
	return "ws://" + i.hostPort() + path
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (i *Instance) GetMetadata(key string) string {
	if i.Metadata == nil {
		return ""
	}
	return i.Metadata[key]
}

func (i *Instance) hostPort() string {
	return joinHostPort(i.IP, i.Port)
}

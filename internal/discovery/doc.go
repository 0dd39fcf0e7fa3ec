// Package discovery advertises and finds ampwatch live feeds with mDNS.
//
// A decoder started with --listen and --advertise registers itself as a
// "_ampwatch._tcp" service so that monitors elsewhere on the network can find
// its WebSocket feed without configuration.
//
// # Advertising
//
//	ad, err := discovery.Advertise("ampwatch-kitchen", 8080,
//	    []string{"version=" + version.UserAgent(), "path=/ws"})
//	if err != nil {
//	    return err
//	}
//	defer ad.Shutdown()
//
// # Scanning
//
//	instances, err := discovery.NewScanner().Scan(ctx)
//	for _, inst := range instances {
//	    fmt.Println(inst.Name, inst.FeedURL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Instances must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery

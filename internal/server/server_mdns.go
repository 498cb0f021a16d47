package server

import (
	"log/slog"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/mdns"
)

const mdnsService = "_newmd._tcp"

// startMDNSAdvertiser announces the status API on the local network and
// returns the function that withdraws it.
func startMDNSAdvertiser(listenAddr, appVersion string) func() {
	if strings.TrimSpace(envOrDefault("NEWMD_MDNS_ENABLE", "true")) == "false" {
		return func() {}
	}
	port, ok := listenPort(listenAddr)
	if !ok {
		slog.Warn("mdns advertise skipped: no usable port", "addr", listenAddr)
		return func() {}
	}
	ips, ok := advertiseIPs(listenAddr)
	if !ok {
		slog.Warn("mdns advertise skipped: listener not reachable from the network", "addr", listenAddr)
		return func() {}
	}

	instance := mdnsInstanceName()
	txt := []string{"name=newmd", "version=" + appVersion}
	service, err := mdns.NewMDNSService(instance, mdnsService, "", "", port, ips, txt)
	if err != nil {
		slog.Error("mdns advertise service setup failed", "error", err)
		return func() {}
	}
	srv, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		slog.Error("mdns advertise start failed", "error", err)
		return func() {}
	}
	slog.Info("mdns advertising enabled", "service", mdnsService, "instance", instance, "port", port)

	return func() {
		if err := srv.Shutdown(); err != nil {
			slog.Debug("mdns shutdown", "error", err)
		}
	}
}

func mdnsInstanceName() string {
	if v := strings.TrimSpace(os.Getenv("NEWMD_MDNS_INSTANCE")); v != "" {
		return v
	}
	host, _ := os.Hostname()
	host = strings.TrimSpace(host)
	if host == "" {
		return "newmd"
	}
	return "newmd-" + host
}

func listenPort(addr string) (int, bool) {
	_, p, err := net.SplitHostPort(strings.TrimSpace(addr))
	if err != nil {
		return 0, false
	}
	port, err := strconv.Atoi(p)
	if err != nil || port <= 0 || port > 65535 {
		return 0, false
	}
	return port, true
}

func advertiseIPs(listenAddr string) ([]net.IP, bool) {
	return listenerIPs(listenAddr, func() ([]net.Addr, error) {
		return net.InterfaceAddrs()
	})
}

// listenerIPs returns the addresses peers can reach the listener on. A
// wildcard listener is reachable on every usable interface address, a
// specific IP only on itself and a loopback listener not at all.
func listenerIPs(listenAddr string, interfaceAddrs func() ([]net.Addr, error)) ([]net.IP, bool) {
	host, _, err := net.SplitHostPort(strings.TrimSpace(listenAddr))
	if err != nil {
		return nil, false
	}
	if host != "" {
		ip := net.ParseIP(host)
		if ip == nil || ip.IsLoopback() {
			return nil, false
		}
		if !ip.IsUnspecified() {
			return []net.IP{ip.To16()}, true
		}
	}
	addrs, err := interfaceAddrs()
	if err != nil {
		return nil, false
	}
	ips := usableIPs(addrs)
	return ips, len(ips) > 0
}

// usableIPs keeps routable unicast addresses, IPv4 first.
func usableIPs(addrs []net.Addr) []net.IP {
	seen := map[string]struct{}{}
	var out []net.IP
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet == nil || ipNet.IP == nil {
			continue
		}
		ip := ipNet.IP
		if ip.IsLoopback() || ip.IsUnspecified() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			continue
		}
		ip = ip.To16()
		if _, dup := seen[ip.String()]; dup {
			continue
		}
		seen[ip.String()] = struct{}{}
		out = append(out, ip)
	}
	slices.SortFunc(out, func(a, b net.IP) int {
		a4, b4 := a.To4() != nil, b.To4() != nil
		if a4 != b4 {
			if a4 {
				return -1
			}
			return 1
		}
		return strings.Compare(a.String(), b.String())
	})
	return out
}

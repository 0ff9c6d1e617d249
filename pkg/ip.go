package pkg

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"
)

// parseAddr accepts both "ip" and "ip:port" forms.
func parseAddr(value string) (netip.Addr, error) {
	value = strings.TrimSpace(value)
	if addrPort, err := netip.ParseAddrPort(value); err == nil {
		return addrPort.Addr().Unmap(), nil
	}
	addr, err := netip.ParseAddr(strings.Trim(value, "[]"))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("ip addr %s is invalid", value)
	}
	return addr.Unmap(), nil
}

// IPIsLocal reports whether the address belongs to the machine or a private
// network (dev setups, docker bridges), where geolocation has nothing to find.
func IPIsLocal(ipAddr string) bool {
	addr, err := parseAddr(ipAddr)
	if err != nil {
		return false
	}
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsUnspecified()
}

// ReadUserIP returns the caller IP, preferring proxy headers over the remote address.
// Local and private addresses are reported as "localhost".
func ReadUserIP(r *http.Request) (string, error) {
	raw := r.Header.Get("X-Real-Ip")
	if raw == "" {
		// X-Forwarded-For: client, proxy1, proxy2
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			raw, _, _ = strings.Cut(forwarded, ",")
		}
	}
	if strings.TrimSpace(raw) == "" {
		raw = r.RemoteAddr
	}

	addr, err := parseAddr(raw)
	if err != nil {
		return "", err
	}
	if IPIsLocal(addr.String()) {
		return "localhost", nil
	}
	return addr.String(), nil
}

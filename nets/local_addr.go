package nets

import (
	"net"
	"net/netip"
)

// IsLocalAddr reports whether addr, with or without a port, is a loopback or private address.
// Hosts that fail to resolve are not local.
type IsLocalAddr func(addr string) (bool, error)

func (Module) IsLocalAddr() IsLocalAddr {
	return func(addr string) (bool, error) {
		host := addr
		if h, _, err := net.SplitHostPort(addr); err == nil {
			host = h
		}

		if ip, err := netip.ParseAddr(host); err == nil {
			return isLocalIP(ip), nil
		}

		ips, err := net.LookupIP(host)
		if err != nil {
			return false, nil
		}
		for _, ip := range ips {
			if a, ok := netip.AddrFromSlice(ip); ok && isLocalIP(a.Unmap()) {
				return true, nil
			}
		}
		return false, nil
	}
}

func isLocalIP(ip netip.Addr) bool {
	return ip.IsLoopback() || ip.IsPrivate()
}

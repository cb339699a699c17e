package nets

import (
	"fmt"
	"net/url"
	"os"
	"sync"

	"github.com/reusee/tvk/configs"
	"github.com/reusee/tvk/logs"
	"github.com/reusee/tvk/modes"
	"golang.org/x/net/proxy"
)

// ProxyAddr is the socks or http proxy used to reach non-local consoles.
type ProxyAddr string

var _ configs.Configurable = ProxyAddr("")

func (ProxyAddr) ConfigKey() string {
	return "proxy_addr"
}

// Tests never go through a proxy.
func (Module) ProxyAddr(
	mode modes.Mode,
	loader configs.Loader,
	logger logs.Logger,
) ProxyAddr {
	if mode == modes.ModeDevelopment {
		return ""
	}
	addr := configs.FirstNonZero(
		configs.First[ProxyAddr](loader, "proxy_addr"),
		ProxyAddr(os.Getenv("ALL_PROXY")),
		ProxyAddr(os.Getenv("all_proxy")),
		ProxyAddr(os.Getenv("SOCKS_PROXY")),
		ProxyAddr(os.Getenv("socks_proxy")),
	)
	if addr != "" {
		logger.Info("proxy", "addr", addr)
	}
	return addr
}

// proxyURL parses addr, accepting socks:// as socks5://.
func proxyURL(addr ProxyAddr) (*url.URL, error) {
	u, err := url.Parse(string(addr))
	if err != nil {
		return nil, fmt.Errorf("parse proxy %s: %w", addr, err)
	}
	if u.Scheme == "socks" {
		u.Scheme = "socks5"
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse proxy %s: no host", addr)
	}
	return u, nil
}

// GetProxyDialer returns the dialer for non-local addresses, direct when no proxy is set.
type GetProxyDialer func() (Dialer, error)

func (Module) GetProxyDialer(
	addr ProxyAddr,
) GetProxyDialer {
	return sync.OnceValues(func() (Dialer, error) {
		if addr == "" {
			return direct, nil
		}
		u, err := proxyURL(addr)
		if err != nil {
			return nil, err
		}
		d, err := proxy.FromURL(u, direct)
		if err != nil {
			return nil, err
		}
		ret, ok := d.(Dialer)
		if !ok {
			return nil, fmt.Errorf("proxy %s: dialer %T cannot take a context", addr, d)
		}
		return ret, nil
	})
}

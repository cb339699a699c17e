package nets

import (
	"context"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/tvk/configs"
	"github.com/reusee/tvk/modes"
)

func TestListenAndDial(t *testing.T) {
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Fork(
		dscope.Provide(configs.NewLoader(nil, "")),
	).Call(func(
		listen Listen,
		dialer Dialer,
		proxyAddr ProxyAddr,
	) {
		if proxyAddr != "" {
			t.Fatalf("no proxy in test mode, got %v", proxyAddr)
		}
		ln, err := listen("127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		defer ln.Close()

		accepted := make(chan error, 1)
		go func() {
			conn, err := ln.Accept()
			if err == nil {
				conn.Close()
			}
			accepted <- err
		}()

		conn, err := dialer.DialContext(context.Background(), "tcp", ln.Addr().String())
		if err != nil {
			t.Fatal(err)
		}
		conn.Close()
		if err := <-accepted; err != nil {
			t.Fatal(err)
		}
	})
}

package consoles

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/tvk/bridges"
	"github.com/reusee/tvk/configs"
	"github.com/reusee/tvk/modes"
	"github.com/reusee/tvk/nets"
	"github.com/reusee/tvk/scenes"
)

func testScope(t *testing.T) dscope.Scope {
	return dscope.New(
		new(Module),
		new(scenes.Module),
		modes.ForTest(t),
	).Fork(
		dscope.Provide(configs.NewLoader(nil, "")),
	)
}

func TestConsole(t *testing.T) {
	testScope(t).Call(func(
		server *Server,
		bridge *bridges.Bridge,
		scene *scenes.Scene,
		listen nets.Listen,
		dialer nets.Dialer,
	) {
		defer bridge.Close()
		ln, err := listen("127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		served := make(chan error, 1)
		go func() {
			served <- server.Serve(ctx, ln)
		}()

		client, err := Dial(ctx, dialer, ln.Addr().String())
		if err != nil {
			t.Fatal(err)
		}
		defer client.Close()

		if err := client.Exec(ctx, `scene.setTitle("remote")`); err != nil {
			t.Fatal(err)
		}
		if err := client.Exec(ctx, `scene.setArea(2) scene.setLighting(false)`); err != nil {
			t.Fatal(err)
		}
		err = client.Exec(ctx, `scene.setArea("x")`)
		var remote *RemoteError
		if !errors.As(err, &remote) || !strings.Contains(remote.Message, "scene.setArea") {
			t.Fatalf("got %v", err)
		}
		// the connection survives failed chunks
		if err := client.Exec(ctx, `provenance.undo()`); err != nil {
			t.Fatal(err)
		}
		if err := client.Exec(ctx, "a = 1\nb = 2"); !errors.Is(err, ErrMultiline) {
			t.Fatalf("got %v", err)
		}
		err = ExecLines(ctx, client, "-- comment\n\nscene.setIsoValue(0.5)\nscene.setArea(9)\nscene.setTitle(\"never\")\n")
		if !errors.As(err, &remote) || !strings.HasPrefix(err.Error(), "line 4: ") {
			t.Fatalf("got %v", err)
		}

		cancel()
		if err := <-served; err != nil {
			t.Fatal(err)
		}
		if scene.Title() != "remote" || scene.Area() != scenes.Area2by2 || !scene.Lighting() || scene.IsoValue() != 0.5 {
			t.Fatalf("got %v", scene)
		}
	})
}

func TestBadMagic(t *testing.T) {
	testScope(t).Call(func(
		server *Server,
		bridge *bridges.Bridge,
	) {
		defer bridge.Close()
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		served := make(chan error, 1)
		go func() {
			served <- server.Serve(ctx, ln)
		}()

		conn, err := net.Dial("tcp", ln.Addr().String())
		if err != nil {
			t.Fatal(err)
		}
		defer conn.Close()
		if _, err := conn.Write([]byte("HTTP set_i1(1)\n")); err != nil {
			t.Fatal(err)
		}
		buf := make([]byte, 16)
		if n, err := conn.Read(buf); err == nil {
			t.Fatalf("got %q", buf[:n])
		}

		cancel()
		if err := <-served; err != nil {
			t.Fatal(err)
		}
	})
}

func TestExecSerialized(t *testing.T) {
	testScope(t).Call(func(
		server *Server,
		bridge *bridges.Bridge,
	) {
		defer bridge.Close()
		n := 0
		if err := bridge.Register("incr", func() {
			n++
		}, bridges.Exempt()); err != nil {
			t.Fatal(err)
		}
		ctx := context.Background()
		errs := make(chan error)
		for range 8 {
			go func() {
				errs <- server.Exec(ctx, `for i = 1, 100 do incr() end`)
			}()
		}
		for range 8 {
			if err := <-errs; err != nil {
				t.Fatal(err)
			}
		}
		if n != 800 {
			t.Fatalf("got %d", n)
		}

		err := server.Exec(ctx, `no_such_function()`)
		if err == nil || !strings.Contains(err.Error(), "call: ") {
			t.Fatalf("got %v", err)
		}

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		if err := server.Exec(cancelled, `incr()`); !errors.Is(err, context.Canceled) {
			t.Fatalf("got %v", err)
		}
	})
}


package debugs

import (
	"context"
	"strings"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/tvk/bridges"
	"github.com/reusee/tvk/configs"
	"github.com/reusee/tvk/modes"
)

func TestInspector(t *testing.T) {
	dscope.New(
		new(Module),
		modes.ForTest(t),
	).Fork(
		dscope.Provide(configs.NewLoader(nil, "")),
	).Call(func(
		bridge *bridges.Bridge,
	) {
		defer bridge.Close()
		var level int
		if err := bridge.Register("setLevel", func(v int) {
			level = v
		}, bridges.Doc("Set the level."), bridges.Defaults(1)); err != nil {
			t.Fatal(err)
		}
		if err := bridge.Exec(context.Background(), `setLevel(5) setLevel(7)`); err != nil {
			t.Fatal(err)
		}

		eval := func(src string) string {
			t.Helper()
			ret, err := Eval(bridge, src)
			if err != nil {
				t.Fatal(err)
			}
			return ret
		}

		if got := eval(`cursor()`); got != "2" {
			t.Fatalf("got %s", got)
		}
		if got := eval(`[h["undo"] for h in history()]`); got != "[[1], [5]]" {
			t.Fatalf("got %s", got)
		}
		if got := eval(`[h["current"] for h in history()]`); got != "[False, True]" {
			t.Fatalf("got %s", got)
		}
		if got := eval(`"setLevel" in functions()`); got != "True" {
			t.Fatalf("got %s", got)
		}
		if got := eval(`describe("setLevel")`); !strings.HasPrefix(got, "Set the level.\nvoid setLevel(int)") {
			t.Fatalf("got %s", got)
		}

		eval(`undo()`)
		if level != 5 || eval(`cursor()`) != "1" {
			t.Fatalf("got %d", level)
		}
		eval(`redo()`)
		if level != 7 {
			t.Fatalf("got %d", level)
		}

		if _, err := Eval(bridge, `redo()`); err == nil {
			t.Fatal("should fail at top of stack")
		}
		if _, err := Eval(bridge, `describe("nope")`); err == nil {
			t.Fatal("should fail")
		}
	})
}

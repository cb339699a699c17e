package modes

import (
	"os"
	"testing"

	"github.com/reusee/dscope"
)

func TestModuleForProduction(t *testing.T) {
	dscope.New(ForProduction()).Call(func(
		testingT *testing.T,
		mode Mode,
		output Output,
	) {
		if testingT != nil {
			t.Fatal()
		}
		if mode != ModeProduction {
			t.Fatalf("got %v", mode)
		}
		if output != os.Stderr {
			t.Fatal()
		}
	})
}

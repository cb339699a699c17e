package configs

import (
	"testing"
)

func TestFirst(t *testing.T) {
	loader := NewLoader([]string{"test.cue"}, testSchema)

	str := First[string](loader, "str")
	if str != "bar" {
		t.Fatalf("got %v", str)
	}

	// missing values decode as zero
	if n := First[int](loader, "num"); n != 0 {
		t.Fatalf("got %v", n)
	}
}

func TestFirstNonZero(t *testing.T) {
	if n := FirstNonZero(0, 3, 5); n != 3 {
		t.Fatalf("got %v", n)
	}
	if s := FirstNonZero("", ""); s != "" {
		t.Fatalf("got %v", s)
	}
}

func TestFirstPanicsOnBadValue(t *testing.T) {
	loader := NewLoader([]string{"test.cue"}, testSchema)
	defer func() {
		if recover() == nil {
			t.Fatal("should panic")
		}
	}()
	// str is a string
	First[int](loader, "str")
}

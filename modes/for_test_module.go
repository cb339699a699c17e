package modes

import (
	"testing"

	"github.com/reusee/dscope"
)

// ModuleForTest routes output to the test log, so it only shows up for failing or verbose tests.
type ModuleForTest struct {
	dscope.Module
	t *testing.T
}

func ForTest(t *testing.T) ModuleForTest {
	return ModuleForTest{
		t: t,
	}
}

func (m ModuleForTest) T() *testing.T {
	return m.t
}

func (m ModuleForTest) Mode() Mode {
	return ModeDevelopment
}

func (m ModuleForTest) Output() Output {
	return m.t.Output()
}

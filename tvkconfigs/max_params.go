package tvkconfigs

import (
	"strconv"

	"github.com/reusee/tvk/cmds"
	"github.com/reusee/tvk/configs"
)

// MaxParams bounds the parameter count of registered functions.
type MaxParams int

var _ configs.Configurable = MaxParams(0)

func (MaxParams) ConfigKey() string {
	return "max_params"
}

func (m MaxParams) String() string {
	return strconv.Itoa(int(m))
}

const DefaultMaxParams = 10

var maxParamsFlag = cmds.Var[int]("-max-params", "max parameters of a registered function")

func (Module) MaxParams(
	loader configs.Loader,
) MaxParams {
	return MaxParams(configs.FirstNonZero(
		*maxParamsFlag,
		configs.First[int](loader, "max_params"),
		DefaultMaxParams,
	))
}

package tvkconfigs

import (
	"strconv"

	"github.com/reusee/tvk/cmds"
	"github.com/reusee/tvk/configs"
)

type ConsoleAddr string

var _ configs.Configurable = ConsoleAddr("")

func (ConsoleAddr) ConfigKey() string {
	return "console_addr"
}

const DefaultConsoleAddr = "127.0.0.1:4445"

var consoleAddrFlag = cmds.Var[string]("-addr", "console listen address")

func (Module) ConsoleAddr(
	loader configs.Loader,
) ConsoleAddr {
	return ConsoleAddr(configs.FirstNonZero(
		*consoleAddrFlag,
		configs.First[string](loader, "console_addr"),
		DefaultConsoleAddr,
	))
}

// ConsoleMaxConns caps concurrently open console connections.
type ConsoleMaxConns int

var _ configs.Configurable = ConsoleMaxConns(0)

func (ConsoleMaxConns) ConfigKey() string {
	return "console_max_conns"
}

func (c ConsoleMaxConns) String() string {
	return strconv.Itoa(int(c))
}

const DefaultConsoleMaxConns = 50

var consoleMaxConnsFlag = cmds.Var[int]("-max-conns", "max concurrent console connections")

func (Module) ConsoleMaxConns(
	loader configs.Loader,
) ConsoleMaxConns {
	return ConsoleMaxConns(configs.FirstNonZero(
		*consoleMaxConnsFlag,
		configs.First[int](loader, "console_max_conns"),
		DefaultConsoleMaxConns,
	))
}

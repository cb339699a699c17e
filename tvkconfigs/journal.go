package tvkconfigs

import (
	"github.com/reusee/tvk/cmds"
	"github.com/reusee/tvk/configs"
)

// JournalPath is the sqlite file recording provenance events. Empty disables the journal.
type JournalPath string

var _ configs.Configurable = JournalPath("")

func (JournalPath) ConfigKey() string {
	return "journal_path"
}

var journalFlag = cmds.Var[string]("-journal", "sqlite file recording provenance events")

func (Module) JournalPath(
	loader configs.Loader,
) JournalPath {
	return JournalPath(configs.FirstNonZero(
		*journalFlag,
		configs.First[string](loader, "journal_path"),
	))
}

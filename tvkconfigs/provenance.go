package tvkconfigs

import (
	"github.com/reusee/tvk/cmds"
	"github.com/reusee/tvk/configs"
)

type ReentryException bool

var _ configs.Configurable = ReentryException(false)

func (ReentryException) ConfigKey() string {
	return "reentry_exception"
}

var reentryExceptionFlag = cmds.Var[*bool]("-reentry-exception", "fail nested registered calls instead of running them unrecorded")

func (Module) ReentryException(
	loader configs.Loader,
) ReentryException {
	return ReentryException(boolSetting(loader, *reentryExceptionFlag, "reentry_exception", true))
}

type ProvenanceEnabled bool

var _ configs.Configurable = ProvenanceEnabled(false)

func (ProvenanceEnabled) ConfigKey() string {
	return "provenance_enabled"
}

var provenanceFlag = cmds.Var[*bool]("-provenance", "record calls for undo and redo")

func (Module) ProvenanceEnabled(
	loader configs.Loader,
) ProvenanceEnabled {
	return ProvenanceEnabled(boolSetting(loader, *provenanceFlag, "provenance_enabled", true))
}

// boolSetting resolves flag, then config, then def. nil means unset.
func boolSetting(loader configs.Loader, flag *bool, path string, def bool) bool {
	if flag != nil {
		return *flag
	}
	if v := configs.First[*bool](loader, path); v != nil {
		return *v
	}
	return def
}

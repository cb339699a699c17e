package tvkconfigs

import (
	"slices"

	"github.com/reusee/tvk/cmds"
	"github.com/reusee/tvk/configs"
)

// Preload lists lua files to execute before anything else.
// Files from every config are included, system wide ones first.
type Preload []string

func (Preload) ConfigKey() string {
	return "preload"
}

var preloadFlag = cmds.Collect[string]("-preload", "execute a lua file at startup")

func (Module) Preload(
	loader configs.Loader,
) (ret Preload) {
	var lists [][]string
	for list := range configs.All[[]string](loader, "preload") {
		lists = append(lists, list)
	}
	// loader order is most specific first
	slices.Reverse(lists)
	for _, list := range lists {
		ret = append(ret, list...)
	}
	ret = append(ret, *preloadFlag...)
	return
}

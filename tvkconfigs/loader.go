package tvkconfigs

import (
	_ "embed"
	"os"
	"path/filepath"
	"slices"

	"github.com/reusee/tvk/cmds"
	"github.com/reusee/tvk/configs"
	"github.com/reusee/tvk/logs"
)

//go:embed schema.cue
var schema string

func (Module) ConfigsLoader(
	logger logs.Logger,
) configs.Loader {

	paths := configPaths()
	if len(paths) > 0 {
		logger.Info("config file",
			"paths", paths,
		)
	}
	return configs.NewLoader(paths, schema)
}

var configFileFlag = cmds.Collect[string]("-config", "load a config file before the default locations")

// configPaths lists existing candidate files, most specific first:
// -config flags, then the working directory, the user config dir and /etc.
func configPaths() []string {
	paths := slices.Clone(*configFileFlag)

	var dirs []string
	if dir, err := os.Getwd(); err == nil {
		dirs = append(dirs, dir)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, "tvk"))
	}
	dirs = append(dirs, "/etc")

	for _, dir := range dirs {
		for _, name := range []string{"tvk.cue", ".tvk.cue"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}
	return paths
}

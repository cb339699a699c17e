package logs

import (
	"io"

	"github.com/reusee/tvk/modes"
)

type Writer io.Writer

func (Module) Writer(output modes.Output) Writer {
	return output
}

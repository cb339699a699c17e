package bridges

import (
	"fmt"
	"io"
)

// WriteHistory prints one line per record, marking the one under the cursor with a star.
func (b *Bridge) WriteHistory(w io.Writer) error {
	cursor := b.ledger.Cursor()
	for i, record := range b.ledger.Records() {
		mark := " "
		if i == cursor-1 {
			mark = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %d\t%s%v\n", mark, i+1, record.Name, record.Redo); err != nil {
			return err
		}
	}
	return nil
}

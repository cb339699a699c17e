package logs

import (
	"context"
	"errors"
	"fmt"
)

// WrapCall annotates err with the call id in ctx, if any.
func WrapCall(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	call := CallOf(ctx)
	if call == "" {
		return err
	}
	return errors.Join(err, fmt.Errorf("call: %s", call))
}

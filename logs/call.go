package logs

import (
	"context"
	"crypto/rand"
)

type callKey struct{}

// CallKey is the context key of the current Call.
var CallKey = callKey{}

// Call identifies one script execution: a chunk, a file, a console line or a replay.
type Call string

func CallOf(ctx context.Context) Call {
	if v := ctx.Value(CallKey); v != nil {
		return v.(Call)
	}
	return ""
}

type NewCall func(ctx context.Context, what string) (context.Context, Call)

func (Module) NewCall(
	logger Logger,
) NewCall {
	return func(ctx context.Context, what string) (context.Context, Call) {
		parent := CallOf(ctx)
		call := Call(rand.Text())
		ctx = context.WithValue(ctx, CallKey, call)
		var args []any
		if parent != "" {
			args = append(args, "parent", parent)
		}
		logger.DebugContext(ctx, what, args...)
		return ctx, call
	}
}

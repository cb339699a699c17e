package instances

import (
	"strconv"

	"github.com/reusee/tvk/faults"
)

// Handle is the script-visible id of a native object.
type Handle int64

// Sentinel means no object, or an object that was already deleted.
const Sentinel Handle = 0

func (h Handle) String() string {
	if h == Sentinel {
		return "<none>"
	}
	return "m" + strconv.FormatInt(int64(h), 10)
}

// Registry is an arena of native references keyed by monotonic ids.
// Retired ids stay retired; they are never handed out again.
type Registry struct {
	next    Handle
	live    map[Handle]any
	retired map[Handle]bool
}

func NewRegistry() *Registry {
	return &Registry{
		live:    make(map[Handle]any),
		retired: make(map[Handle]bool),
	}
}

func (r *Registry) Register(ref any) Handle {
	r.next++
	r.live[r.next] = ref
	return r.next
}

// Resolve returns the object bound to h.
// The sentinel and retired handles resolve to nil without error.
func (r *Registry) Resolve(h Handle) (any, error) {
	if h == Sentinel {
		return nil, nil
	}
	if ref, ok := r.live[h]; ok {
		return ref, nil
	}
	if r.retired[h] {
		return nil, nil
	}
	return nil, faults.New(faults.KindUnknownHandle, h.String(), "handle was never issued")
}

// Retire invalidates h and reports whether it was live.
func (r *Registry) Retire(h Handle) bool {
	if _, ok := r.live[h]; !ok {
		return false
	}
	delete(r.live, h)
	r.retired[h] = true
	return true
}

func (r *Registry) Live(h Handle) bool {
	_, ok := r.live[h]
	return ok
}

func (r *Registry) Len() int {
	return len(r.live)
}

// Canonical maps stale handles to the sentinel.
func (r *Registry) Canonical(h Handle) Handle {
	if r.Live(h) {
		return h
	}
	return Sentinel
}

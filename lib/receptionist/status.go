package receptionist

import "sync/atomic"

// Status reports whether the service has finished starting. It never looks at matcher state.
type Status struct {
	active atomic.Bool
}

func (T *Status) MarkReady() {
	T.active.Store(true)
}

func (T *Status) MarkStopped() {
	T.active.Store(false)
}

func (T *Status) Active() bool {
	return T.active.Load()
}

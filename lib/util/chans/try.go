package chans

func TrySend[T any](ch chan<- T, value T) bool {
	select {
	case ch <- value:
		return true
	default:
		return false
	}
}

// Notify wakes a single waiter on a signal channel created with a buffer of one. Notifications
// are coalesced while the waiter is busy.
func Notify(ch chan<- struct{}) {
	TrySend(ch, struct{}{})
}

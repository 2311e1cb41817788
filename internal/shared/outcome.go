package shared

// Outcome is the result of a call to an auxiliary service that is never
// allowed to fail the caller. When the service could not produce a value,
// Degraded is set, Reason holds the cause and Value holds the fallback.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Reason   error
}

// Fresh wraps a value produced by the service itself.
func Fresh[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Fallback wraps a substitute value used because the service failed.
func Fallback[T any](v T, reason error) Outcome[T] {
	return Outcome[T]{Value: v, Degraded: true, Reason: reason}
}

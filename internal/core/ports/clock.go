package ports

// Clock returns the current unix time in seconds.
type Clock interface {
	Now() int64
}

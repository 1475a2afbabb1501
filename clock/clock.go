package clock

import "time"

// Clock supplies current time so expiry logic stays testable
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func New() Clock { return realClock{} }

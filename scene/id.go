package scene

import "sync/atomic"

// Id identifies a scene object for the lifetime of the process. Ids are
// never reused and zero is never handed out, so zero can serve as the
// "no object" value in lookups and wire payloads.
type Id int32

var idCounter int32

// GenerateId returns the next unused object id. Safe to call from
// multiple goroutines, importers may run in the background.
func GenerateId() Id {
	return Id(atomic.AddInt32(&idCounter, 1))
}

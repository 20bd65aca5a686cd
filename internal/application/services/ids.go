package services

import (
	"fmt"
	"sync"
	"time"
)

var (
	stampMu   sync.Mutex
	lastStamp int64
)

// batchStamp returns a unix-millisecond stamp strictly greater than any
// stamp previously issued by this process. Stored ids keep the readable
// {millis}-{ordinal} shape while same-tick batches can no longer collide.
func batchStamp(now time.Time) int64 {
	stampMu.Lock()
	defer stampMu.Unlock()
	stamp := now.UnixMilli()
	if stamp <= lastStamp {
		stamp = lastStamp + 1
	}
	lastStamp = stamp
	return stamp
}

// recordID builds the id of the ordinal-th record of a batch.
func recordID(stamp int64, ordinal int) string {
	return fmt.Sprintf("%d-%d", stamp, ordinal)
}

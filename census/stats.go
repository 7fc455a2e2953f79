package census

import (
	"encoding/json"
	"sync"
	"time"
)

// UsageStats counts lookup outcomes. A hit is a returned record, a
// miss is ErrNotFound (including records hidden by filters), a failure
// is an unavailable or corrupt snapshot.
type UsageStats struct {
	mutex        sync.Mutex
	lastLookup   time.Time
	hitCount     uint64
	missCount    uint64
	failureCount uint64
}

func (u *UsageStats) Hit() {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.lastLookup = time.Now()
	u.hitCount += 1
}

func (u *UsageStats) Missed() {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.lastLookup = time.Now()
	u.missCount += 1
}

func (u *UsageStats) Failed() {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.lastLookup = time.Now()
	u.failureCount += 1
}

func (u *UsageStats) MarshalJSON() ([]byte, error) {
	var lastLookupTime int64

	u.mutex.Lock()

	if !u.lastLookup.IsZero() {
		lastLookupTime = u.lastLookup.Unix()
	}

	rawStruct := struct {
		LastLookup   int64  `json:"last_lookup"`
		HitCount     uint64 `json:"hit_count"`
		MissCount    uint64 `json:"miss_count"`
		FailureCount uint64 `json:"failure_count"`
	}{
		LastLookup:   lastLookupTime,
		HitCount:     u.hitCount,
		MissCount:    u.missCount,
		FailureCount: u.failureCount,
	}

	u.mutex.Unlock()

	return json.Marshal(&rawStruct)
}

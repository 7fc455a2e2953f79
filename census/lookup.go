package census

// Engine answers point lookups against the current snapshot. It holds
// no mutable state besides usage counters: every call re-reads the
// store, so an in-flight refresh becomes visible on the next lookup.
type Engine struct {
	store Store
	stats *UsageStats
}

func NewEngine(store Store) *Engine {
	return &Engine{
		store: store,
		stats: &UsageStats{},
	}
}

// Lookup returns the record owning the given IPv4 address.
//
// Filters are applied to the matched record only, never to the whole
// snapshot: a stopped service is treated as absent when includeStopped
// is false, a blocked customer's record when includeBlocked is false.
// Both filters compose independently.
//
// Errors: ErrInvalidIP for malformed input, ErrSnapshotNotReady when
// nothing was published yet, a wrapped ErrSnapshotCorrupt for an
// unparseable snapshot and ErrNotFound for a miss.
func (e *Engine) Lookup(ip string, includeStopped, includeBlocked bool) (ServiceRecord, error) {
	if !ValidIPv4(ip) {
		return ServiceRecord{}, ErrInvalidIP
	}

	snapshot, err := e.store.Current()
	if err != nil {
		e.stats.Failed()

		return ServiceRecord{}, err
	}

	record, ok := snapshot[ip]
	if !ok {
		e.stats.Missed()

		return ServiceRecord{}, ErrNotFound
	}

	if !includeStopped && record.ServiceStatus == StatusStopped {
		e.stats.Missed()

		return ServiceRecord{}, ErrNotFound
	}

	if !includeBlocked && record.CustomerStatus == StatusBlocked {
		e.stats.Missed()

		return ServiceRecord{}, ErrNotFound
	}

	e.stats.Hit()

	return record, nil
}

func (e *Engine) Stats() *UsageStats {
	return e.stats
}

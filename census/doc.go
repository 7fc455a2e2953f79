// Census is a library which answers a single question: which customer
// and which service own a given IPv4 address.
//
// Data comes from an upstream customer management system. An export job
// fetches every customer together with its internet services, merges
// per-customer and per-service fields into flat records and publishes
// them as a single IPv4-indexed snapshot file. A query service reads
// that snapshot and serves point lookups with request-time filters.
//
// The package is organized around four pieces:
//
// Normalizer
//
// A pure transformation from a raw (customer, service) pair into a
// canonical ServiceRecord, including geo and address fallbacks.
//
// Builder
//
// Orchestrates upstream fetches and assembles the snapshot. A failure
// to list customers aborts the run; a failure to list one customer's
// services only skips that customer.
//
// Store
//
// The hand-off point between exporter and server. Snapshots are
// published atomically: a reader observes either the old or the new
// file, never a torn one.
//
// Lookup engine and HTTP handler
//
// Read-only lookups against the current snapshot. Filters are applied
// to the matched record only, the stored snapshot is never modified.
package census

// Ipcensus answers "which customer and service own IPv4 address X"
// for networks managed in an external customer management system.
//
// It ships a single binary with two modes:
//
// Export
//
// "ipcensus config.hjson export" pulls every customer and its internet
// services from the upstream API, merges them into flat IPv4-indexed
// records and atomically publishes them as one JSON snapshot file.
// Without --once it keeps running and repeats the export daily at the
// configured hour.
//
// Serve
//
// "ipcensus config.hjson serve" starts an HTTP service answering point
// lookups against the current snapshot, with optional request-time
// exclusion of stopped services and blocked customers.
//
// The census package holds all the logic; splynx implements the
// upstream client. This package only wires them together from an
// hjson config.
package main

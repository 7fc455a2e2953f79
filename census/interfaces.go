package census

import (
	"context"
	"net/http"
)

// UpstreamClient fetches raw rows from the customer management API.
// Authentication, pagination and retry policy all live behind this
// interface.
type UpstreamClient interface {
	ListCustomers(ctx context.Context) ([]Customer, error)
	ListCustomerServices(ctx context.Context, customerID int64) ([]Service, error)
}

// Store is a single-writer, multi-reader hand-off point for snapshots.
// Publish is atomic with respect to Current: a concurrent reader gets
// either the previous or the new snapshot in full.
type Store interface {
	Publish(snapshot Snapshot) error
	Current() (Snapshot, error)
}

type Logger interface {
	BuildPublished(records int)
	BuildError(err error)
	CustomerSkipped(customerID int64, err error)
	DuplicateIP(ip string, previousServiceID, currentServiceID int64)
	LookupError(ip string, err error)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

package census

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

const DefaultWorkerPoolSize = 8

// BuilderOpts configures a Builder. Client and Logger are mandatory.
type BuilderOpts struct {
	Client UpstreamClient
	Logger Logger

	// CustomAttributes maps upstream additional-attribute keys to
	// output keys of the produced records.
	CustomAttributes map[string]string

	// MaxRecords stops both customer and service iteration once the
	// snapshot reaches this size. 0 means unlimited. Intended for
	// bounded test or debug runs.
	MaxRecords int

	// WorkerPoolSize bounds concurrent per-customer service fetches.
	WorkerPoolSize int
}

// Builder assembles a snapshot from upstream data. A failed customer
// list fetch aborts the whole run; a failed service fetch for a single
// customer is logged and skipped.
type Builder struct {
	client     UpstreamClient
	logger     Logger
	attrs      map[string]string
	maxRecords int
	poolSize   int
}

func NewBuilder(opts BuilderOpts) *Builder {
	poolSize := opts.WorkerPoolSize
	if poolSize <= 0 {
		poolSize = DefaultWorkerPoolSize
	}

	return &Builder{
		client:     opts.Client,
		logger:     opts.Logger,
		attrs:      opts.CustomAttributes,
		maxRecords: opts.MaxRecords,
		poolSize:   poolSize,
	}
}

// Build fetches everything and returns a complete snapshot. It never
// publishes anything itself. A build which ends up with zero eligible
// records fails with ErrEmptyBuild so that a healthy snapshot is never
// replaced by an accidental wipe.
func (b *Builder) Build(ctx context.Context) (Snapshot, error) {
	customers, err := b.client.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch customers: %w", err)
	}

	var snapshot Snapshot

	if b.maxRecords > 0 {
		snapshot, err = b.collectCapped(ctx, customers)
	} else {
		snapshot, err = b.collect(ctx, customers)
	}

	if err != nil {
		return nil, err
	}

	if len(snapshot) == 0 {
		return nil, ErrEmptyBuild
	}

	return snapshot, nil
}

// collect prefetches service lists on a bounded worker pool and then
// merges them serially in upstream customer order. The serial merge
// keeps duplicate IPv4 resolution deterministic: the later customer
// wins, not the faster goroutine.
func (b *Builder) collect(ctx context.Context, customers []Customer) (Snapshot, error) {
	type fetchResult struct {
		services []Service
		err      error
	}

	results := make([]fetchResult, len(customers))
	wg := &sync.WaitGroup{}

	pool, err := ants.NewPoolWithFunc(b.poolSize, func(args interface{}) {
		defer wg.Done()

		i := args.(int)
		services, err := b.client.ListCustomerServices(ctx, customers[i].ID)
		results[i] = fetchResult{services: services, err: err}
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create a worker pool: %w", err)
	}

	defer pool.Release()

	for i := range customers {
		wg.Add(1)

		if err := pool.Invoke(i); err != nil {
			wg.Done()
			results[i] = fetchResult{err: err}
		}
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapshot := Snapshot{}

	for i, customer := range customers {
		if results[i].err != nil {
			b.logger.CustomerSkipped(customer.ID, results[i].err)

			continue
		}

		b.merge(snapshot, customer, results[i].services)
	}

	return snapshot, nil
}

// collectCapped fetches serially so that no upstream request is made
// once the cap is reached.
func (b *Builder) collectCapped(ctx context.Context, customers []Customer) (Snapshot, error) {
	snapshot := Snapshot{}

	for _, customer := range customers {
		if len(snapshot) >= b.maxRecords {
			break
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		services, err := b.client.ListCustomerServices(ctx, customer.ID)
		if err != nil {
			b.logger.CustomerSkipped(customer.ID, err)

			continue
		}

		b.merge(snapshot, customer, services)
	}

	return snapshot, nil
}

func (b *Builder) merge(snapshot Snapshot, customer Customer, services []Service) {
	info := NewCustomerInfo(customer, b.attrs)

	for _, service := range services {
		if b.maxRecords > 0 && len(snapshot) >= b.maxRecords {
			return
		}

		record, ok := Normalize(info, service)
		if !ok {
			continue
		}

		// two services sharing an IPv4 is an upstream data quality
		// problem; last write wins but it is worth a warning
		if previous, ok := snapshot[record.ServiceIPv4]; ok {
			b.logger.DuplicateIP(record.ServiceIPv4, previous.ServiceID, record.ServiceID)
		}

		snapshot[record.ServiceIPv4] = record
	}
}

package census_test

import (
	"context"
	"sync"

	"github.com/ipcensus/ipcensus/census"
)

type fakeUpstreamClient struct {
	mutex sync.Mutex

	customers    []census.Customer
	customersErr error
	services     map[int64][]census.Service
	servicesErr  map[int64]error

	serviceCalls []int64
}

func (f *fakeUpstreamClient) ListCustomers(_ context.Context) ([]census.Customer, error) {
	if f.customersErr != nil {
		return nil, f.customersErr
	}

	return f.customers, nil
}

func (f *fakeUpstreamClient) ListCustomerServices(_ context.Context, customerID int64) ([]census.Service, error) {
	f.mutex.Lock()
	f.serviceCalls = append(f.serviceCalls, customerID)
	f.mutex.Unlock()

	if err := f.servicesErr[customerID]; err != nil {
		return nil, err
	}

	return f.services[customerID], nil
}

func (f *fakeUpstreamClient) ServiceCalls() []int64 {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	rv := make([]int64, len(f.serviceCalls))
	copy(rv, f.serviceCalls)

	return rv
}

type testLogger struct {
	mutex sync.Mutex

	published  []int
	buildErrs  []error
	skipped    []int64
	duplicates []string
	lookupErrs []error
}

func (t *testLogger) BuildPublished(records int) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.published = append(t.published, records)
}

func (t *testLogger) BuildError(err error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.buildErrs = append(t.buildErrs, err)
}

func (t *testLogger) CustomerSkipped(customerID int64, _ error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.skipped = append(t.skipped, customerID)
}

func (t *testLogger) DuplicateIP(ip string, _, _ int64) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.duplicates = append(t.duplicates, ip)
}

func (t *testLogger) LookupError(_ string, err error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.lookupErrs = append(t.lookupErrs, err)
}

func (t *testLogger) Skipped() []int64 {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	rv := make([]int64, len(t.skipped))
	copy(rv, t.skipped)

	return rv
}

func (t *testLogger) Duplicates() []string {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	rv := make([]string, len(t.duplicates))
	copy(rv, t.duplicates)

	return rv
}

func activeCustomer(id int64, name string) census.Customer {
	return census.Customer{
		ID:     id,
		Name:   name,
		Status: "active",
	}
}

func activeService(id int64, ipv4 string) census.Service {
	return census.Service{
		ID:     id,
		Status: "active",
		IPv4:   ipv4,
	}
}

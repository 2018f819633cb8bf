// Package mocks provides in-memory implementations of the store and service
// interfaces for tests.
//
// Each mock keeps its records in maps and behaves like the PostgreSQL store it
// stands in for, including the not-found and conflict errors. Any method can be
// overridden by setting the matching Fn field:
//
//	trades := mocks.NewMockTradeStore()
//	trades.CreateFn = func(ctx context.Context, t *domain.Trade) error {
//	    return errors.New("boom")
//	}
//
// WithTx returns the mock itself, so services running inside
// store.RunInTransaction keep operating on the same records.
package mocks

package routeserver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mqsieve/internal/logger"
	"mqsieve/internal/routing"
)

type fakeLister struct {
	mu      sync.Mutex
	results [][]string
	errs    []error
	calls   int
}

func (f *fakeLister) RoutingKeys(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.calls
	f.calls++
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return f.results[i], f.errs[i]
}

func (f *fakeLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestPollerInstallsSnapshotImmediately(t *testing.T) {
	lister := &fakeLister{
		results: [][]string{{"sbx-1", "sbx-2"}},
		errs:    []error{nil},
	}
	table := routing.NewActiveRouteTable()
	poller := NewPoller(lister, table, time.Hour, logger.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	require.Eventually(t, func() bool {
		return table.Contains("sbx-1") && table.Contains("sbx-2")
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestPollerRetainsSnapshotOnFailure(t *testing.T) {
	lister := &fakeLister{
		results: [][]string{{"sbx-1"}, nil, nil},
		errs:    []error{nil, errors.New("route server down"), errors.New("route server down")},
	}
	table := routing.NewActiveRouteTable()
	poller := NewPoller(lister, table, 10*time.Millisecond, logger.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	require.Eventually(t, func() bool {
		return lister.callCount() >= 3
	}, time.Second, 5*time.Millisecond)

	assert.True(t, table.Contains("sbx-1"), "failed polls must not clear the table")
	assert.Equal(t, 1, table.Len())

	cancel()
	<-done
}

func TestPollerKeepsRunningAfterFailure(t *testing.T) {
	lister := &fakeLister{
		results: [][]string{nil, {"sbx-9"}},
		errs:    []error{errors.New("timeout"), nil},
	}
	table := routing.NewActiveRouteTable()
	poller := NewPoller(lister, table, 10*time.Millisecond, logger.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	require.Eventually(t, func() bool {
		return table.Contains("sbx-9")
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestPollerStopsOnCancel(t *testing.T) {
	lister := &fakeLister{
		results: [][]string{{}},
		errs:    []error{nil},
	}
	table := routing.NewActiveRouteTable()
	poller := NewPoller(lister, table, time.Hour, logger.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop on cancel")
	}
}

func TestNewPollerDefaultsInterval(t *testing.T) {
	poller := NewPoller(&fakeLister{results: [][]string{{}}, errs: []error{nil}}, routing.NewActiveRouteTable(), 0, logger.NopLogger())
	assert.Equal(t, 10*time.Second, poller.interval)
}

package storeclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// instantSleep never waits but honors cancellation, and counts how often
// the loop scheduled a delay.
func instantSleep(counter *atomic.Int32) SleepFunc {
	return func(ctx context.Context, d time.Duration) bool {
		counter.Add(1)
		return ctx.Err() == nil
	}
}

func TestWaitReadySucceedsOnSixthProbe(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		if hits.Add(1) < 6 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var sleeps atomic.Int32
	client := New(srv.URL, WithSleep(instantSleep(&sleeps)))

	ready := client.WaitReady(context.Background())

	assert.True(t, ready)
	assert.Equal(t, int32(6), hits.Load(), "must stop at first success, no 7th request")
	assert.Equal(t, int32(5), sleeps.Load())
}

func TestWaitReadyGivesUpSilentlyAfterBudget(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var sleeps atomic.Int32
	client := New(srv.URL, WithSleep(instantSleep(&sleeps)))

	assert.False(t, client.WaitReady(context.Background()))
	assert.Equal(t, int32(6), hits.Load())
}

func TestWaitReadyStopsOnCancellation(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	var sleeps atomic.Int32
	client := New(srv.URL, WithSleep(func(c context.Context, d time.Duration) bool {
		sleeps.Add(1)
		cancel()
		return false
	}))

	assert.False(t, client.WaitReady(ctx))
	// One probe, then the cancelled sleep; no further attempts scheduled.
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, int32(1), sleeps.Load())
}

func TestFetchProductsDecodesData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/products", r.URL.Path)
		assert.Equal(t, "boots", r.URL.Query().Get("category"))
		assert.Equal(t, "100", r.URL.Query().Get("minPrice"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":"p1","name":"Waterproof Hiking Boots","brand":"TrailMaster","category":"boots","price_cents":14999,"sizes":[{"size":"9","stock":8}]}]}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	products, err := client.FetchProducts(context.Background(), Filter{Category: "boots", MinPrice: "100"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Waterproof Hiking Boots", products[0].Name)
	assert.Equal(t, int64(14999), products[0].PriceCents)
}

func TestFetchProductsEmptyResultIsNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	products, err := New(srv.URL).FetchProducts(context.Background(), Filter{Category: "sandals"})
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestFetchProductsRetriesThenSucceeds(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	var sleeps atomic.Int32
	client := New(srv.URL, WithSleep(instantSleep(&sleeps)))

	_, err := client.FetchProducts(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, int32(2), sleeps.Load())

	// Success reset the counter: a later outage gets the full budget again.
	hits.Store(0)
	_, err = client.FetchProducts(context.Background(), Filter{})
	require.NoError(t, err)
}

func TestFetchProductsExhaustionAndManualReset(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	var sleeps atomic.Int32
	client := New(srv.URL, WithSleep(instantSleep(&sleeps)))

	_, err := client.FetchProducts(context.Background(), Filter{})
	require.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, int32(4), hits.Load(), "initial attempt plus three retries")

	// Counter stays exhausted: the next call fails fast.
	hits.Store(0)
	_, err = client.FetchProducts(context.Background(), Filter{})
	require.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, int32(1), hits.Load())

	// Reset re-arms the full retry budget.
	client.Reset()
	hits.Store(0)
	_, err = client.FetchProducts(context.Background(), Filter{})
	require.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, int32(4), hits.Load())
}

func TestFetchProductsStopsOnCancellation(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := New(srv.URL, WithSleep(func(c context.Context, d time.Duration) bool {
		cancel()
		return false
	}))

	_, err := client.FetchProducts(ctx, Filter{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, int32(1), hits.Load())
}

package order_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoe-store/internal/models"
	"shoe-store/internal/order"
	"shoe-store/internal/repository"
)

func placeTestOrder(t *testing.T, catalog *repository.MemoryCatalogStore, orders *repository.MemoryOrderStore, qty int64) *models.Order {
	t.Helper()
	engine := order.NewEngine(catalog, orders, nil)
	p, err := catalog.FindMany(context.Background(), repository.ProductFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, p)

	placed, err := engine.Place(context.Background(), "u1",
		[]models.CartLine{{ProductID: p[0].ID.Hex(), Size: "9", Quantity: qty}}, testAddress)
	require.NoError(t, err)
	return placed
}

func TestHappyPathTransitions(t *testing.T) {
	catalog := newCatalog(t, sneaker(10))
	orders := repository.NewMemoryOrderStore()
	machine := order.NewStateMachine(catalog, orders)
	placed := placeTestOrder(t, catalog, orders, 1)

	for _, to := range []models.OrderStatus{models.StatusProcessing, models.StatusShipped, models.StatusDelivered} {
		updated, err := machine.Transition(context.Background(), placed.ID.Hex(), to)
		require.NoError(t, err)
		assert.Equal(t, to, updated.Status)
	}

	// Forward path never touches stock.
	products, _ := catalog.FindMany(context.Background(), repository.ProductFilter{})
	stock, _ := products[0].StockFor("9")
	assert.Equal(t, int64(9), stock)
}

// pending -> processing -> cancelled releases exactly the reserved
// quantities back to the catalog.
func TestCancellationReleasesStock(t *testing.T) {
	catalog := newCatalog(t, sneaker(10))
	orders := repository.NewMemoryOrderStore()
	machine := order.NewStateMachine(catalog, orders)
	placed := placeTestOrder(t, catalog, orders, 2)

	productID := placed.Items[0].ProductID.Hex()
	assert.Equal(t, int64(8), stockOf(t, catalog, productID, "9"))

	_, err := machine.Transition(context.Background(), placed.ID.Hex(), models.StatusProcessing)
	require.NoError(t, err)

	updated, err := machine.Transition(context.Background(), placed.ID.Hex(), models.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, updated.Status)
	assert.Equal(t, int64(10), stockOf(t, catalog, productID, "9"))
}

// A second cancellation attempt must not release stock again.
func TestDoubleCancelReleasesOnce(t *testing.T) {
	catalog := newCatalog(t, sneaker(10))
	orders := repository.NewMemoryOrderStore()
	machine := order.NewStateMachine(catalog, orders)
	placed := placeTestOrder(t, catalog, orders, 2)
	productID := placed.Items[0].ProductID.Hex()

	_, err := machine.Cancel(context.Background(), placed.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(10), stockOf(t, catalog, productID, "9"))

	_, err = machine.Cancel(context.Background(), placed.ID.Hex())
	var invalid *order.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.StatusCancelled, invalid.From)

	assert.Equal(t, int64(10), stockOf(t, catalog, productID, "9"))
}

// flakyReleaseCatalog fails a configured number of ReleaseStock calls,
// optionally only for one product, then behaves normally.
type flakyReleaseCatalog struct {
	*repository.MemoryCatalogStore

	mu       sync.Mutex
	failures int
	failOn   string // product ID, empty means any
}

func (c *flakyReleaseCatalog) ReleaseStock(ctx context.Context, productID, size string, qty int64) error {
	c.mu.Lock()
	fail := c.failures > 0 && (c.failOn == "" || c.failOn == productID)
	if fail {
		c.failures--
	}
	c.mu.Unlock()
	if fail {
		return fmt.Errorf("%w: injected fault", repository.ErrUnavailable)
	}
	return c.MemoryCatalogStore.ReleaseStock(ctx, productID, size, qty)
}

// A release failure mid-cancellation must not strand the reserved stock:
// cancelling again finishes the release, and only once.
func TestCancelResumesAfterFailedRelease(t *testing.T) {
	memory := newCatalog(t, sneaker(5))
	catalog := &flakyReleaseCatalog{MemoryCatalogStore: memory, failures: 1}
	orders := repository.NewMemoryOrderStore()
	machine := order.NewStateMachine(catalog, orders)
	placed := placeTestOrder(t, memory, orders, 2)
	productID := placed.Items[0].ProductID.Hex()
	require.Equal(t, int64(3), stockOf(t, memory, productID, "9"))

	_, err := machine.Cancel(context.Background(), placed.ID.Hex())
	require.ErrorIs(t, err, repository.ErrUnavailable)

	// The order is cancelled but its stock is still held.
	stored, err := orders.FindByID(context.Background(), placed.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)
	assert.Equal(t, int64(3), stockOf(t, memory, productID, "9"))

	// Retrying completes the release.
	updated, err := machine.Cancel(context.Background(), placed.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, updated.Status)
	assert.Equal(t, int64(5), stockOf(t, memory, productID, "9"))

	// A further attempt neither errors into a release nor double-credits.
	_, err = machine.Cancel(context.Background(), placed.ID.Hex())
	var invalid *order.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, int64(5), stockOf(t, memory, productID, "9"))
}

// With one release already applied before the failure, the retry must pick
// up at the failed item rather than re-crediting the first one.
func TestCancelRetrySkipsAlreadyReleasedItems(t *testing.T) {
	a := &models.Product{
		Name: "A", Brand: "b", Category: "casual", PriceCents: 1000,
		Sizes: []models.SizeStock{{Size: "9", Stock: 10}},
	}
	b := &models.Product{
		Name: "B", Brand: "b", Category: "casual", PriceCents: 1000,
		Sizes: []models.SizeStock{{Size: "9", Stock: 10}},
	}
	memory := newCatalog(t, a, b)
	catalog := &flakyReleaseCatalog{MemoryCatalogStore: memory, failures: 1}
	orders := repository.NewMemoryOrderStore()
	machine := order.NewStateMachine(catalog, orders)
	engine := order.NewEngine(memory, orders, nil)

	placed, err := engine.Place(context.Background(), "u1", []models.CartLine{
		{ProductID: a.ID.Hex(), Size: "9", Quantity: 2},
		{ProductID: b.ID.Hex(), Size: "9", Quantity: 3},
	}, testAddress)
	require.NoError(t, err)
	require.Len(t, placed.Items, 2)

	first := placed.Items[0].ProductID.Hex()
	second := placed.Items[1].ProductID.Hex()
	catalog.failOn = second

	_, err = machine.Cancel(context.Background(), placed.ID.Hex())
	require.ErrorIs(t, err, repository.ErrUnavailable)
	assert.Equal(t, int64(10), stockOf(t, memory, first, "9"))

	updated, err := machine.Cancel(context.Background(), placed.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, updated.Status)

	// Both products back to full stock, the first credited exactly once.
	assert.Equal(t, int64(10), stockOf(t, memory, first, "9"))
	assert.Equal(t, int64(10), stockOf(t, memory, second, "9"))
}

// Transition hands back the stored order, not a locally patched copy.
func TestTransitionReturnsStoredOrder(t *testing.T) {
	catalog := newCatalog(t, sneaker(10))
	orders := repository.NewMemoryOrderStore()
	machine := order.NewStateMachine(catalog, orders)
	placed := placeTestOrder(t, catalog, orders, 1)

	updated, err := machine.Transition(context.Background(), placed.ID.Hex(), models.StatusProcessing)
	require.NoError(t, err)

	stored, err := orders.FindByID(context.Background(), placed.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, stored.Status, updated.Status)
	assert.True(t, updated.UpdatedAt.Equal(stored.UpdatedAt))
	assert.True(t, updated.UpdatedAt.After(placed.UpdatedAt) || updated.UpdatedAt.Equal(placed.UpdatedAt))
}

func TestTerminalStatesRejectAllTransitions(t *testing.T) {
	catalog := newCatalog(t, sneaker(10))
	orders := repository.NewMemoryOrderStore()
	machine := order.NewStateMachine(catalog, orders)

	for _, terminal := range []models.OrderStatus{models.StatusDelivered, models.StatusCancelled} {
		o := models.Order{OwnerID: "u1", Status: terminal}
		require.NoError(t, orders.Insert(context.Background(), &o))

		for _, to := range []models.OrderStatus{models.StatusPending, models.StatusProcessing, models.StatusShipped, models.StatusDelivered, models.StatusCancelled} {
			_, err := machine.Transition(context.Background(), o.ID.Hex(), to)
			var invalid *order.InvalidTransitionError
			require.ErrorAs(t, err, &invalid, "from %s to %s", terminal, to)
			assert.Equal(t, terminal, invalid.From)

			got, _ := orders.FindByID(context.Background(), o.ID.Hex())
			assert.Equal(t, terminal, got.Status)
		}
	}
}

func TestCancellationWindowClosesOnceShipped(t *testing.T) {
	catalog := newCatalog(t, sneaker(10))
	orders := repository.NewMemoryOrderStore()
	machine := order.NewStateMachine(catalog, orders)
	placed := placeTestOrder(t, catalog, orders, 1)
	productID := placed.Items[0].ProductID.Hex()

	_, err := machine.Transition(context.Background(), placed.ID.Hex(), models.StatusProcessing)
	require.NoError(t, err)
	_, err = machine.Transition(context.Background(), placed.ID.Hex(), models.StatusShipped)
	require.NoError(t, err)

	_, err = machine.Transition(context.Background(), placed.ID.Hex(), models.StatusCancelled)
	var invalid *order.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.StatusShipped, invalid.From)
	assert.Equal(t, models.StatusCancelled, invalid.To)

	// Stock stays reserved.
	assert.Equal(t, int64(9), stockOf(t, catalog, productID, "9"))
}

func TestBackwardTransitionRejected(t *testing.T) {
	catalog := newCatalog(t, sneaker(10))
	orders := repository.NewMemoryOrderStore()
	machine := order.NewStateMachine(catalog, orders)
	placed := placeTestOrder(t, catalog, orders, 1)

	_, err := machine.Transition(context.Background(), placed.ID.Hex(), models.StatusProcessing)
	require.NoError(t, err)

	_, err = machine.Transition(context.Background(), placed.ID.Hex(), models.StatusPending)
	var invalid *order.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)

	got, _ := orders.FindByID(context.Background(), placed.ID.Hex())
	assert.Equal(t, models.StatusProcessing, got.Status)
}

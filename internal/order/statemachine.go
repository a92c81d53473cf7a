package order

import (
	"context"

	"shoe-store/internal/models"
	"shoe-store/internal/repository"
)

// transitions is the full set of permitted status changes. delivered and
// cancelled are terminal: no entry, no way out.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:    {models.StatusProcessing, models.StatusCancelled},
	models.StatusProcessing: {models.StatusShipped, models.StatusCancelled},
	models.StatusShipped:    {models.StatusDelivered},
}

// cancellable lists the states an order may be cancelled from. Once
// shipped, the cancellation window is closed.
var cancellable = []models.OrderStatus{models.StatusPending, models.StatusProcessing}

func allowed(from, to models.OrderStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// StateMachine is the sole mutator of order status. A transition to
// cancelled releases each item's reserved stock exactly once.
type StateMachine struct {
	catalog repository.CatalogStore
	orders  repository.OrderStore
}

func NewStateMachine(catalog repository.CatalogStore, orders repository.OrderStore) *StateMachine {
	return &StateMachine{
		catalog: catalog,
		orders:  orders,
	}
}

// Transition moves the order to the target status, returning the updated
// order. Invalid targets fail with InvalidTransitionError and leave the
// order untouched.
func (m *StateMachine) Transition(ctx context.Context, orderID string, to models.OrderStatus) (*models.Order, error) {
	current, err := m.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if to == models.StatusCancelled {
		return m.cancelFrom(ctx, current)
	}

	if !allowed(current.Status, to) {
		return nil, &InvalidTransitionError{From: current.Status, To: to}
	}

	moved, err := m.orders.UpdateStatus(ctx, orderID, []models.OrderStatus{current.Status}, to)
	if err != nil {
		return nil, err
	}
	if !moved {
		// Lost the race to a concurrent transition; re-read to report the
		// actual conflict.
		latest, err := m.orders.FindByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return nil, &InvalidTransitionError{From: latest.Status, To: to}
	}

	return m.orders.FindByID(ctx, orderID)
}

// Cancel cancels the order, releasing its stock. Safe to call repeatedly:
// the status flip is a conditional write, and release progress is recorded
// per item, so a retry after a failed release resumes where the last
// attempt stopped instead of releasing anything twice.
func (m *StateMachine) Cancel(ctx context.Context, orderID string) (*models.Order, error) {
	current, err := m.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return m.cancelFrom(ctx, current)
}

func (m *StateMachine) cancelFrom(ctx context.Context, current *models.Order) (*models.Order, error) {
	// A cancelled order with releases still outstanding is a previous
	// cancellation interrupted mid-release; retrying finishes the job.
	if current.Status == models.StatusCancelled && current.ReleasedItems < len(current.Items) {
		return m.releaseItems(ctx, current)
	}

	if !allowed(current.Status, models.StatusCancelled) {
		return nil, &InvalidTransitionError{From: current.Status, To: models.StatusCancelled}
	}

	moved, err := m.orders.UpdateStatus(ctx, current.ID.Hex(), cancellable, models.StatusCancelled)
	if err != nil {
		return nil, err
	}
	if !moved {
		latest, err := m.orders.FindByID(ctx, current.ID.Hex())
		if err != nil {
			return nil, err
		}
		if latest.Status == models.StatusCancelled && latest.ReleasedItems < len(latest.Items) {
			return m.releaseItems(ctx, latest)
		}
		return nil, &InvalidTransitionError{From: latest.Status, To: models.StatusCancelled}
	}

	return m.releaseItems(ctx, current)
}

// releaseItems returns each item's stock to the catalog, recording progress
// after every release so an interrupted cancellation can be retried without
// double-crediting. On a release failure the order stays cancelled and the
// error surfaces to the caller, who retries by cancelling again.
func (m *StateMachine) releaseItems(ctx context.Context, current *models.Order) (*models.Order, error) {
	id := current.ID.Hex()
	for i := current.ReleasedItems; i < len(current.Items); i++ {
		item := current.Items[i]
		if err := m.catalog.ReleaseStock(ctx, item.ProductID.Hex(), item.Size, item.Quantity); err != nil {
			return nil, err
		}
		if err := m.orders.SetReleasedItems(ctx, id, i+1); err != nil {
			return nil, err
		}
	}
	return m.orders.FindByID(ctx, id)
}

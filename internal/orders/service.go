package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luxeleather/storefront-backend/pkg/db/models"
	"github.com/luxeleather/storefront-backend/pkg/enums"
	pkgerrors "github.com/luxeleather/storefront-backend/pkg/errors"
	"github.com/luxeleather/storefront-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines order lifecycle operations beyond repository reads.
type Service interface {
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params, status *enums.OrderStatus) (*OrderList, error)
	GetMine(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	CancelMine(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	ListAll(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	SetTracking(ctx context.Context, input SetTrackingInput) (*models.Order, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params, status *enums.OrderStatus) (*OrderList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}

	list, err := s.repo.ListOrders(ctx, params, ListFilters{UserID: &userID, Status: status})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) GetMine(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	order, err := s.loadOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	// Ownership failures read as not-found so order ids are not probeable.
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// CancelMine lets a customer cancel their own order while it is still
// pending. Anything past pending requires support intervention.
func (s *service) CancelMine(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if order.Status == enums.OrderStatusCancelled {
			result = order
			return nil
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled")
		}

		result, err = s.transition(ctx, repo, order, enums.OrderStatusCancelled, "cancelled by customer", &userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ListAll(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	if filters.PaymentStatus != nil && !filters.PaymentStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status filter")
	}

	list, err := s.repo.ListOrders(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.loadOrder(ctx, s.repo, orderID)
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		// Repeating the current status is an idempotent no-op.
		if order.Status == input.Status {
			result = order
			return nil
		}
		if !order.Status.CanTransitionTo(input.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, input.Status))
		}

		var actor *uuid.UUID
		if input.ActorID != uuid.Nil {
			actor = &input.ActorID
		}
		result, err = s.transition(ctx, repo, order, input.Status, input.Note, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) SetTracking(ctx context.Context, input SetTrackingInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.TrackingNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking number required")
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		switch order.Status {
		case enums.OrderStatusProcessing, enums.OrderStatusShipped:
		default:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "tracking can only be set while processing or shipped")
		}

		updates := map[string]any{"tracking_number": input.TrackingNumber}
		if input.Carrier != "" {
			updates["carrier"] = input.Carrier
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tracking")
		}

		order.TrackingNumber = &input.TrackingNumber
		if input.Carrier != "" {
			order.Carrier = &input.Carrier
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// transition applies a validated status change, stamps lifecycle timestamps,
// and appends the history row. Callers have already checked the edge.
func (s *service) transition(ctx context.Context, repo Repository, order *models.Order, next enums.OrderStatus, note string, actorID *uuid.UUID) (*models.Order, error) {
	now := time.Now().UTC()
	updates := map[string]any{"status": next}

	switch next {
	case enums.OrderStatusShipped:
		if order.ShippedAt == nil {
			updates["shipped_at"] = now
			order.ShippedAt = &now
		}
	case enums.OrderStatusDelivered:
		if order.DeliveredAt == nil {
			updates["delivered_at"] = now
			order.DeliveredAt = &now
		}
	}

	if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	if note == "" {
		note = fmt.Sprintf("status changed to %s", next)
	}
	entry := &models.OrderStatusHistory{
		OrderID: order.ID,
		Status:  next,
		Note:    note,
		ActorID: actorID,
	}
	if err := repo.AppendStatusHistory(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
	}

	order.Status = next
	order.StatusHistory = append(order.StatusHistory, *entry)
	return order, nil
}

func (s *service) loadOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

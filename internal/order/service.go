package order

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/farmmarket/internal/payment"
	"github.com/vasiliy-maslov/farmmarket/internal/product"
	"github.com/vasiliy-maslov/farmmarket/internal/user"
)

var (
	ErrEmptyOrder        = errors.New("order must contain at least one item")
	ErrInvalidQuantity   = errors.New("item quantity must be greater than zero")
	ErrProductNotFound   = errors.New("product not found")
	ErrNotOwner          = errors.New("order does not belong to this buyer")
	ErrNotParticipant    = errors.New("no products of this farmer in the order")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

type ItemInput struct {
	ProductID int64
	Quantity  int
}

// ProductReader is the slice of the product repository the order service
// needs: price/farmer lookups when snapshotting order items.
type ProductReader interface {
	GetByID(ctx context.Context, id int64) (*product.Product, error)
}

// Notifier receives the lifecycle events that turn into per-user
// notifications. Implemented by the notification service.
type Notifier interface {
	OrderPlaced(buyerID int64, farmerIDs []int64, orderNumber string)
	PaymentReceived(buyerID int64, farmerIDs []int64, orderNumber string)
	OrderConfirmed(buyerID int64, orderNumber string)
	OrderShipped(buyerID int64, orderNumber string)
	OrderDelivered(buyerID int64, orderNumber string)
	OrderCancelled(recipients []int64, orderNumber string)
}

// Broadcaster pushes events to connected websocket clients. Implemented by
// the realtime hub.
type Broadcaster interface {
	Broadcast(eventType string, payload map[string]any)
}

type Service interface {
	Create(ctx context.Context, buyerID int64, items []ItemInput) (*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByBuyer(ctx context.Context, buyerID int64) ([]Order, error)
	ListByFarmer(ctx context.Context, farmerID int64) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	Pay(ctx context.Context, buyerID, orderID int64) (*payment.Intent, error)
	Approve(ctx context.Context, farmerID, orderID int64) error
	Ship(ctx context.Context, farmerID, orderID int64) error
	Deliver(ctx context.Context, farmerID, orderID int64) error
	Cancel(ctx context.Context, userID int64, role user.Role, orderID int64) error
	RequestStatus(ctx context.Context, farmerID, orderID int64, requested Status) error
}

type service struct {
	repo        Repository
	products    ProductReader
	notifier    Notifier
	broadcaster Broadcaster
	processor   payment.Processor
}

func NewService(repo Repository, products ProductReader, notifier Notifier, broadcaster Broadcaster, processor payment.Processor) Service {
	return &service{
		repo:        repo,
		products:    products,
		notifier:    notifier,
		broadcaster: broadcaster,
		processor:   processor,
	}
}

// Create places a new pending order. Unit prices are snapshotted from the
// products at this moment, the total is computed from the snapshots, and
// stock is reserved inside the same transaction as the inserts.
func (s *service) Create(ctx context.Context, buyerID int64, items []ItemInput) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	orderItems := make([]OrderItem, 0, len(items))
	farmerSet := make(map[int64]bool)
	total := 0.0

	for _, in := range items {
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %d", ErrInvalidQuantity, in.ProductID)
		}

		p, err := s.products.GetByID(ctx, in.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, in.ProductID)
			}
			log.Error().Err(err).Int64("product_id", in.ProductID).Msg("service: failed to fetch product for order")
			return nil, fmt.Errorf("service: failed to fetch product: %w", err)
		}

		orderItems = append(orderItems, OrderItem{
			ProductID: p.ID,
			Quantity:  in.Quantity,
			Price:     p.Price,
		})
		farmerSet[p.FarmerID] = true
		total += float64(in.Quantity) * p.Price
	}

	number, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate order number: %w", err)
	}

	o := &Order{
		BuyerID:     buyerID,
		OrderNumber: number.String(),
		Status:      StatusPending,
		Total:       math.Round(total*100) / 100,
		Items:       orderItems,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return nil, err
		}
		log.Error().Err(err).Int64("buyer_id", buyerID).Msg("service: failed to create order")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	farmerIDs := make([]int64, 0, len(farmerSet))
	for id := range farmerSet {
		farmerIDs = append(farmerIDs, id)
	}

	s.notifier.OrderPlaced(buyerID, farmerIDs, o.OrderNumber)
	s.broadcaster.Broadcast("order_placed", map[string]any{
		"order_id":     o.ID,
		"order_number": o.OrderNumber,
		"buyer_id":     o.BuyerID,
	})

	log.Info().Int64("order_id", o.ID).Int64("buyer_id", buyerID).Float64("total", o.Total).Msg("service: order created")
	return o, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("order_id", id).Msg("service: failed to fetch order")
		return nil, fmt.Errorf("service: failed to fetch order: %w", err)
	}
	return o, nil
}

func (s *service) ListByBuyer(ctx context.Context, buyerID int64) ([]Order, error) {
	orders, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		log.Error().Err(err).Int64("buyer_id", buyerID).Msg("service: failed to list buyer orders")
		return nil, fmt.Errorf("service: failed to list buyer orders: %w", err)
	}
	return orders, nil
}

func (s *service) ListByFarmer(ctx context.Context, farmerID int64) ([]Order, error) {
	orders, err := s.repo.ListByFarmer(ctx, farmerID)
	if err != nil {
		log.Error().Err(err).Int64("farmer_id", farmerID).Msg("service: failed to list farmer orders")
		return nil, fmt.Errorf("service: failed to list farmer orders: %w", err)
	}
	return orders, nil
}

func (s *service) ListAll(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, nil
}

// Pay charges the order through the configured payment processor and moves it
// pending → paid. The status move is a conditional update, so a second
// concurrent Pay gets ErrStatusConflict instead of double-processing.
func (s *service) Pay(ctx context.Context, buyerID, orderID int64) (*payment.Intent, error) {
	o, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != buyerID {
		return nil, ErrNotOwner
	}
	if o.Status != StatusPending {
		return nil, fmt.Errorf("%w: cannot pay an order in status %s", ErrInvalidTransition, o.Status)
	}

	amount := int64(math.Round(o.Total * 100))
	intent, err := s.processor.CreateIntent(ctx, amount, "usd", buyerID, o.OrderNumber)
	if err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Msg("service: payment failed")
		return nil, fmt.Errorf("service: payment failed: %w", err)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, StatusPending, StatusPaid); err != nil {
		if errors.Is(err, ErrStatusConflict) || errors.Is(err, ErrNotFound) {
			return nil, err
		}
		log.Error().Err(err).Int64("order_id", orderID).Msg("service: failed to mark order paid")
		return nil, fmt.Errorf("service: failed to mark order paid: %w", err)
	}

	s.notifyTransition(ctx, o, StatusPaid)
	log.Info().Int64("order_id", orderID).Str("intent_id", intent.ID).Msg("service: order paid")
	return intent, nil
}

// requireParticipant loads the order and verifies the farmer owns at least
// one product in it.
func (s *service) requireParticipant(ctx context.Context, farmerID, orderID int64) (*Order, error) {
	o, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.IsFarmerParticipant(ctx, farmerID, orderID)
	if err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Int64("farmer_id", farmerID).Msg("service: failed to check participation")
		return nil, fmt.Errorf("service: failed to check participation: %w", err)
	}
	if !ok {
		return nil, ErrNotParticipant
	}
	return o, nil
}

func (s *service) farmerTransition(ctx context.Context, farmerID, orderID int64, from, to Status) error {
	o, err := s.requireParticipant(ctx, farmerID, orderID)
	if err != nil {
		return err
	}
	if o.Status != from {
		return fmt.Errorf("%w: cannot move order from %s to %s", ErrInvalidTransition, o.Status, to)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, from, to); err != nil {
		if errors.Is(err, ErrStatusConflict) || errors.Is(err, ErrNotFound) {
			return err
		}
		log.Error().Err(err).Int64("order_id", orderID).Str("to", to.String()).Msg("service: failed to update order status")
		return fmt.Errorf("service: failed to update order status: %w", err)
	}

	s.notifyTransition(ctx, o, to)
	log.Info().Int64("order_id", orderID).Str("from", from.String()).Str("to", to.String()).Msg("service: order status updated")
	return nil
}

func (s *service) Approve(ctx context.Context, farmerID, orderID int64) error {
	return s.farmerTransition(ctx, farmerID, orderID, StatusPaid, StatusConfirmed)
}

func (s *service) Ship(ctx context.Context, farmerID, orderID int64) error {
	return s.farmerTransition(ctx, farmerID, orderID, StatusConfirmed, StatusShipped)
}

func (s *service) Deliver(ctx context.Context, farmerID, orderID int64) error {
	return s.farmerTransition(ctx, farmerID, orderID, StatusShipped, StatusDelivered)
}

// Cancel is available to the buyer who owns the order and to any farmer with
// products in it, for any status the lifecycle still allows to cancel. The
// counterparty is notified.
func (s *service) Cancel(ctx context.Context, userID int64, role user.Role, orderID int64) error {
	var o *Order
	var err error

	switch role {
	case user.RoleBuyer:
		o, err = s.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if o.BuyerID != userID {
			return ErrNotOwner
		}
	case user.RoleFarmer:
		o, err = s.requireParticipant(ctx, userID, orderID)
		if err != nil {
			return err
		}
	default:
		return ErrNotParticipant
	}

	if !o.Status.CanTransitionTo(StatusCancelled) {
		return fmt.Errorf("%w: cannot cancel an order in status %s", ErrInvalidTransition, o.Status)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, o.Status, StatusCancelled); err != nil {
		if errors.Is(err, ErrStatusConflict) || errors.Is(err, ErrNotFound) {
			return err
		}
		log.Error().Err(err).Int64("order_id", orderID).Msg("service: failed to cancel order")
		return fmt.Errorf("service: failed to cancel order: %w", err)
	}

	recipients := []int64{o.BuyerID}
	if role == user.RoleBuyer {
		farmerIDs, err := s.repo.FarmerIDsForOrder(ctx, orderID)
		if err != nil {
			log.Error().Err(err).Int64("order_id", orderID).Msg("service: failed to resolve farmers for cancellation notice")
			farmerIDs = nil
		}
		recipients = farmerIDs
	}
	s.notifier.OrderCancelled(recipients, o.OrderNumber)

	log.Info().Int64("order_id", orderID).Int64("user_id", userID).Msg("service: order cancelled")
	return nil
}

// RequestStatus is the farmer-facing generic status update. It dispatches to
// the named transitions so every request is validated against the lifecycle;
// there is no path that writes an arbitrary status.
func (s *service) RequestStatus(ctx context.Context, farmerID, orderID int64, requested Status) error {
	switch requested {
	case StatusConfirmed:
		return s.Approve(ctx, farmerID, orderID)
	case StatusShipped:
		return s.Ship(ctx, farmerID, orderID)
	case StatusDelivered:
		return s.Deliver(ctx, farmerID, orderID)
	case StatusCancelled:
		return s.Cancel(ctx, farmerID, user.RoleFarmer, orderID)
	default:
		return fmt.Errorf("%w: status %q cannot be requested", ErrInvalidTransition, requested)
	}
}

// notifyTransition delivers the notifications and websocket events for a
// completed transition. These are best-effort side effects: they run after
// the status is durably updated and never roll it back.
func (s *service) notifyTransition(ctx context.Context, o *Order, to Status) {
	switch to {
	case StatusPaid:
		farmerIDs, err := s.repo.FarmerIDsForOrder(ctx, o.ID)
		if err != nil {
			log.Error().Err(err).Int64("order_id", o.ID).Msg("service: failed to resolve farmers for payment notice")
		}
		s.notifier.PaymentReceived(o.BuyerID, farmerIDs, o.OrderNumber)
		s.broadcaster.Broadcast("payment_received", map[string]any{
			"order_id":     o.ID,
			"order_number": o.OrderNumber,
			"buyer_id":     o.BuyerID,
		})
	case StatusConfirmed:
		s.notifier.OrderConfirmed(o.BuyerID, o.OrderNumber)
		s.broadcaster.Broadcast("order_confirmed", map[string]any{
			"order_id":     o.ID,
			"order_number": o.OrderNumber,
			"buyer_id":     o.BuyerID,
		})
	case StatusShipped:
		s.notifier.OrderShipped(o.BuyerID, o.OrderNumber)
	case StatusDelivered:
		s.notifier.OrderDelivered(o.BuyerID, o.OrderNumber)
	}
}

package orders

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"restaurant-ordering-api/clock"
	"restaurant-ordering-api/errs"
	"restaurant-ordering-api/models"
	"restaurant-ordering-api/ordernum"
	"restaurant-ordering-api/pricing"
	"restaurant-ordering-api/statemachine"
)

const (
	// BatchLimit caps how many orders one batch transition may touch
	BatchLimit = 100
	// DefaultNumberAttempts bounds retries when a generated order number
	// collides with an existing one
	DefaultNumberAttempts = 5
)

// Service is the single entry point for order creation and status
// mutation. It composes the pricing engine, the order number generator
// and the state machine over an injected DB handle.
type Service struct {
	db             *gorm.DB
	clock          clock.Clock
	numbers        *ordernum.Generator
	numberAttempts int
}

func NewService(db *gorm.DB, c clock.Clock, numberAttempts int) *Service {
	if numberAttempts <= 0 {
		numberAttempts = DefaultNumberAttempts
	}
	return &Service{
		db:             db,
		clock:          c,
		numbers:        ordernum.NewGenerator(c),
		numberAttempts: numberAttempts,
	}
}

// Customer identifies who placed the order
type Customer struct {
	Name  string
	Phone string
}

// ItemInput is a pre-validated line item with its price snapshot
type ItemInput struct {
	Name      string
	UnitPrice float64
	Quantity  int
	Options   []OptionInput
}

type OptionInput struct {
	Name       string
	PriceDelta float64
	Quantity   int
}

// CreateOrder prices the items, mints an order number and persists the
// order with status PENDING and payment UNPAID. The generated number can
// collide with a same-day order; the unique index catches that and the
// insert is retried with a fresh number.
func (s *Service) CreateOrder(customer Customer, items []ItemInput, note string) (*models.Order, error) {
	if customer.Name == "" || customer.Phone == "" {
		return nil, fmt.Errorf("%w: customer name and phone are required", errs.ErrInvalidInput)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", errs.ErrInvalidInput)
	}

	var orderItems []models.OrderItem
	var subtotal float64
	for _, in := range items {
		if in.Name == "" || in.Quantity < 1 || in.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: invalid line item %q", errs.ErrInvalidInput, in.Name)
		}
		final := in.UnitPrice * float64(in.Quantity)
		var options []models.OrderItemOption
		for _, opt := range in.Options {
			if opt.Quantity < 1 {
				return nil, fmt.Errorf("%w: invalid option quantity for %q", errs.ErrInvalidInput, opt.Name)
			}
			final += opt.PriceDelta * float64(opt.Quantity)
			options = append(options, models.OrderItemOption{
				Name:       opt.Name,
				PriceDelta: opt.PriceDelta,
				Quantity:   opt.Quantity,
			})
		}
		subtotal += final
		orderItems = append(orderItems, models.OrderItem{
			Name:       in.Name,
			UnitPrice:  in.UnitPrice,
			Quantity:   in.Quantity,
			FinalPrice: final,
			Options:    options,
		})
	}

	breakdown, err := pricing.Compute(subtotal)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < s.numberAttempts; attempt++ {
		order := models.Order{
			ID:            uuid.New().String(),
			Number:        s.numbers.Next(),
			CustomerName:  customer.Name,
			Phone:         customer.Phone,
			Items:         orderItems,
			Subtotal:      breakdown.Subtotal,
			Tax:           breakdown.Tax,
			ServiceFee:    breakdown.ServiceFee,
			Total:         breakdown.Total,
			Status:        models.StatusPending,
			PaymentStatus: models.PaymentUnpaid,
			Note:          note,
			CreatedAt:     s.clock.Now(),
		}
		if err := s.db.Create(&order).Error; err != nil {
			if isDuplicateNumber(err) {
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("%w: creating order: %v", errs.ErrInternal, err)
		}
		return &order, nil
	}
	return nil, fmt.Errorf("%w: could not mint a unique order number after %d attempts: %v",
		errs.ErrInternal, s.numberAttempts, lastErr)
}

func isDuplicateNumber(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetPriceBreakdown exposes the pricing engine for a bare subtotal
func (s *Service) GetPriceBreakdown(subtotal float64) (pricing.Breakdown, error) {
	return pricing.Compute(subtotal)
}

// GetByID loads a single order with its items
func (s *Service) GetByID(id string) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items.Options").Where("id = ?", id).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %s", errs.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: loading order: %v", errs.ErrInternal, err)
	}
	return &order, nil
}

// GetByNumber validates the number format before touching the DB, so a
// malformed number never reads as a missing order
func (s *Service) GetByNumber(number string) (*models.Order, error) {
	if err := ordernum.Validate(number); err != nil {
		return nil, err
	}
	var order models.Order
	err := s.db.Preload("Items.Options").Where("number = ?", number).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %s", errs.ErrNotFound, number)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: loading order: %v", errs.ErrInternal, err)
	}
	return &order, nil
}

// List returns orders, optionally filtered by status, newest first
func (s *Service) List(status string) ([]models.Order, error) {
	query := s.db.Preload("Items.Options").Order("created_at desc")
	if status != "" {
		parsed, err := models.ParseOrderStatus(status)
		if err != nil {
			return nil, err
		}
		query = query.Where("status = ?", parsed)
	}
	var result []models.Order
	if err := query.Find(&result).Error; err != nil {
		return nil, fmt.Errorf("%w: listing orders: %v", errs.ErrInternal, err)
	}
	return result, nil
}

// Transition moves one order to a new status. The update is conditional
// on the status read beforehand, so when two transitions race on the
// same order at most one wins.
func (s *Service) Transition(id, newStatus string) (*models.Order, error) {
	target, err := models.ParseOrderStatus(newStatus)
	if err != nil {
		return nil, err
	}
	order, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := statemachine.CanTransition(order.Status, target); err != nil {
		return nil, err
	}
	res := s.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Update("status", target)
	if res.Error != nil {
		return nil, fmt.Errorf("%w: updating status: %v", errs.ErrInternal, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: order %s was modified concurrently", errs.ErrInvalidTransition, id)
	}
	order.Status = target
	return order, nil
}

// BatchTransition applies one target status to a bounded set of orders,
// all-or-nothing: if any id is unknown or any transition is invalid the
// whole batch rolls back and nothing mutates.
func (s *Service) BatchTransition(ids []string, newStatus string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no order ids given", errs.ErrInvalidInput)
	}
	if len(ids) > BatchLimit {
		return fmt.Errorf("%w: batch of %d exceeds limit of %d", errs.ErrTooManyItems, len(ids), BatchLimit)
	}
	target, err := models.ParseOrderStatus(newStatus)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing []models.Order
		if err := tx.Where("id IN ?", ids).Find(&existing).Error; err != nil {
			return fmt.Errorf("%w: loading orders: %v", errs.ErrInternal, err)
		}
		byID := make(map[string]models.Order, len(existing))
		for _, o := range existing {
			byID[o.ID] = o
		}
		var missing []string
		for _, id := range ids {
			if _, ok := byID[id]; !ok {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: unknown order ids: %s", errs.ErrNotFound, strings.Join(missing, ", "))
		}
		for _, id := range ids {
			order := byID[id]
			if err := statemachine.CanTransition(order.Status, target); err != nil {
				return fmt.Errorf("order %s: %w", id, err)
			}
			res := tx.Model(&models.Order{}).
				Where("id = ? AND status = ?", order.ID, order.Status).
				Update("status", target)
			if res.Error != nil {
				return fmt.Errorf("%w: updating order %s: %v", errs.ErrInternal, id, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: order %s was modified concurrently", errs.ErrInvalidTransition, id)
			}
		}
		return nil
	})
}

// MarkPaid moves the payment axis UNPAID → PAID, once
func (s *Service) MarkPaid(id string) (*models.Order, error) {
	order, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := statemachine.CanPay(order.PaymentStatus, models.PaymentPaid); err != nil {
		return nil, err
	}
	res := s.db.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", order.ID, order.PaymentStatus).
		Update("payment_status", models.PaymentPaid)
	if res.Error != nil {
		return nil, fmt.Errorf("%w: updating payment status: %v", errs.ErrInternal, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: order %s was modified concurrently", errs.ErrInvalidTransition, id)
	}
	order.PaymentStatus = models.PaymentPaid
	return order, nil
}

package statemachine

import (
	"fmt"

	"restaurant-ordering-api/errs"
	"restaurant-ordering-api/models"
)

// Transition defines a valid status change
type Transition struct {
	From models.OrderStatus
	To   models.OrderStatus
}

// validTransitions is the authoritative state machine definition.
// COMPLETED and CANCELLED are terminal.
var validTransitions = []Transition{
	{From: models.StatusPending, To: models.StatusPreparing},
	{From: models.StatusPreparing, To: models.StatusReady},
	{From: models.StatusReady, To: models.StatusCompleted},
	// Any non-terminal status may be cancelled
	{From: models.StatusPending, To: models.StatusCancelled},
	{From: models.StatusPreparing, To: models.StatusCancelled},
	{From: models.StatusReady, To: models.StatusCancelled},
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[Transition]bool {
	m := make(map[Transition]bool)
	for _, t := range validTransitions {
		m[t] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, t := range validTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// CanTransition checks whether an order may move from one status to another
func CanTransition(from, to models.OrderStatus) error {
	if transitionMap[Transition{From: from, To: to}] {
		return nil
	}
	return fmt.Errorf("%w: %s → %s is not allowed; valid transitions from %s are: %s",
		errs.ErrInvalidTransition, from, to, from, describeValidFrom(from))
}

// CanPay checks the payment axis: UNPAID → PAID, one way only
func CanPay(from, to models.PaymentStatus) error {
	if from == models.PaymentUnpaid && to == models.PaymentPaid {
		return nil
	}
	return fmt.Errorf("%w: payment %s → %s is not allowed", errs.ErrInvalidTransition, from, to)
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}

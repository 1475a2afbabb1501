package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant-ordering-api/errs"
	"restaurant-ordering-api/orders"
	"restaurant-ordering-api/statemachine"
)

// OrderHandler exposes checkout and admin order management
type OrderHandler struct {
	orders *orders.Service
}

func NewOrderHandler(svc *orders.Service) *OrderHandler {
	return &OrderHandler{orders: svc}
}

type CheckoutItemOption struct {
	Name       string  `json:"name" binding:"required"`
	PriceDelta float64 `json:"price_delta"`
	Quantity   int     `json:"quantity" binding:"required,min=1"`
}

type CheckoutItem struct {
	Name      string               `json:"name" binding:"required"`
	UnitPrice float64              `json:"unit_price" binding:"min=0"`
	Quantity  int                  `json:"quantity" binding:"required,min=1"`
	Options   []CheckoutItemOption `json:"options"`
}

type CheckoutRequest struct {
	CustomerName string         `json:"customer_name" binding:"required"`
	Phone        string         `json:"phone" binding:"required"`
	Items        []CheckoutItem `json:"items" binding:"required,min=1,dive"`
	Note         string         `json:"note"`
}

// Checkout creates a new order from validated line-item snapshots
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]orders.ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		in := orders.ItemInput{
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		}
		for _, opt := range it.Options {
			in.Options = append(in.Options, orders.OptionInput{
				Name:       opt.Name,
				PriceDelta: opt.PriceDelta,
				Quantity:   opt.Quantity,
			})
		}
		items = append(items, in)
	}

	order, err := h.orders.CreateOrder(orders.Customer{
		Name:  req.CustomerName,
		Phone: req.Phone,
	}, items, req.Note)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// GetByNumber looks an order up by its public order number
func (h *OrderHandler) GetByNumber(c *gin.Context) {
	order, err := h.orders.GetByNumber(c.Param("number"))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// PriceQuote returns the breakdown for a cart subtotal before checkout
func (h *OrderHandler) PriceQuote(c *gin.Context) {
	var req struct {
		Subtotal float64 `json:"subtotal"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	breakdown, err := h.orders.GetPriceBreakdown(req.Subtotal)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

// List returns all orders, optionally filtered by ?status= (admin)
func (h *OrderHandler) List(c *gin.Context) {
	result, err := h.orders.List(c.Query("status"))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	summary := map[string]int{}
	for _, o := range result {
		summary[string(o.Status)]++
	}

	c.JSON(http.StatusOK, gin.H{
		"count":         len(result),
		"order_summary": summary,
		"orders":        result,
	})
}

// Get returns a single order by internal id (admin)
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orders.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus applies one state machine transition to one order (admin)
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.Transition(c.Param("id"), req.Status)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Order status updated",
		"order_id":       order.ID,
		"current_status": order.Status,
	})
}

type BatchUpdateStatusRequest struct {
	OrderIDs []string `json:"order_ids" binding:"required,min=1"`
	Status   string   `json:"status" binding:"required"`
}

// BatchUpdateStatus applies one target status to many orders,
// all-or-nothing (admin)
func (h *OrderHandler) BatchUpdateStatus(c *gin.Context) {
	var req BatchUpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.orders.BatchTransition(req.OrderIDs, req.Status); err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders updated",
		"count":   len(req.OrderIDs),
		"status":  req.Status,
	})
}

// MarkPaid flips the payment axis to PAID (admin)
func (h *OrderHandler) MarkPaid(c *gin.Context) {
	order, err := h.orders.MarkPaid(c.Param("id"))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "Order marked as paid",
		"order_id":       order.ID,
		"payment_status": order.PaymentStatus,
	})
}

// GetStateMachineInfo documents the transition graph
func (h *OrderHandler) GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"transitions":    statemachine.GetAllTransitions(),
		"payment_states": []string{"UNPAID", "PAID"},
	})
}

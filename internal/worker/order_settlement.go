// Package worker turns order.settled broker messages into stored orders.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go-reseller-ws/internal/model"
	"go-reseller-ws/internal/notify"
	"go-reseller-ws/internal/pricing"
	"go-reseller-ws/internal/rabbitmq"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// OrderSettledEvent is the message payload published when checkout completes.
type OrderSettledEvent struct {
	OrderID    uuid.UUID           `json:"order_id"`
	ResellerID uuid.UUID           `json:"reseller_id"`
	Customer   pricing.ContactInfo `json:"customer"`
	Status     model.OrderStatus   `json:"status"`
	Items      []SettledItem       `json:"items"`
	SettledAt  time.Time           `json:"settled_at"`
}

type SettledItem struct {
	ProductID         uuid.UUID `json:"product_id"`
	ResellerProductID uuid.UUID `json:"reseller_product_id"`
	Name              string    `json:"name"`
	BasePrice         int64     `json:"base_price"`
	SellingPrice      int64     `json:"selling_price"`
	CommissionRate    int       `json:"commission_rate"`
	Quantity          int       `json:"quantity"`
}

// OrderWriter stores an order; created is false for an already stored id.
type OrderWriter interface {
	Create(ctx context.Context, order *model.Order) (created bool, err error)
}

type OrderSettlementWorker struct {
	orders   OrderWriter
	notifier notify.Notifier
	logger   *slog.Logger
	timeout  time.Duration
}

func NewOrderSettlementWorker(orders OrderWriter, notifier notify.Notifier, logger *slog.Logger) *OrderSettlementWorker {
	if notifier == nil {
		notifier = notify.Nop()
	}
	return &OrderSettlementWorker{
		orders:   orders,
		notifier: notifier,
		logger:   logger.With("component", "order_settlement"),
		timeout:  30 * time.Second,
	}
}

// Start consumes queueName until ctx is cancelled.
func (w *OrderSettlementWorker) Start(ctx context.Context, consumer *rabbitmq.Consumer, queueName string) error {
	w.logger.Info("starting order settlement worker", "queue", queueName)
	return consumer.ConsumeQueue(ctx, queueName, w.Handle)
}

func poison(format string, args ...interface{}) error {
	return errors.Wrapf(rabbitmq.ErrPoison, format, args...)
}

// Handle stores one settlement. Malformed events return an error wrapping
// rabbitmq.ErrPoison; storage failures return a plain error so the message
// is redelivered.
func (w *OrderSettlementWorker) Handle(ctx context.Context, body []byte) error {
	var evt OrderSettledEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		w.logger.Warn("unreadable order event", "error", err)
		return poison("decode order event: %v", err)
	}

	order, err := buildOrder(evt)
	if err != nil {
		w.logger.Warn("rejecting order event", "order_id", evt.OrderID, "error", err)
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	created, err := w.orders.Create(ctx, order)
	if err != nil {
		w.logger.Error("store order failed", "order_id", order.ID, "error", err)
		return errors.Wrapf(err, "store order %s", order.ID)
	}
	if !created {
		w.logger.Info("order already settled", "order_id", order.ID)
		return nil
	}

	var markup, commission int64
	for _, item := range order.Items {
		markup += item.Markup()
		commission += item.Commission()
	}
	w.logger.Info("order settled", "order_id", order.ID, "reseller_id", order.ResellerID,
		"total", order.Total, "markup", markup, "commission", commission)

	w.notifier.Notify(notify.Event{
		Type:    notify.EventOrderSettled,
		Level:   notify.LevelSuccess,
		Message: fmt.Sprintf("New order from %s", order.Customer.Name),
		Scope:   order.ResellerID.String(),
		Data: map[string]interface{}{
			"order_id":   order.ID,
			"total":      order.Total,
			"markup":     markup,
			"commission": commission,
			"earnings":   markup - commission,
		},
	})
	return nil
}

func buildOrder(evt OrderSettledEvent) (*model.Order, error) {
	if evt.OrderID == uuid.Nil {
		return nil, poison("order_id is required")
	}
	if evt.ResellerID == uuid.Nil {
		return nil, poison("reseller_id is required")
	}
	if len(evt.Items) == 0 {
		return nil, poison("order has no items")
	}
	status := evt.Status
	if status == "" {
		status = model.OrderPending
	}
	if !status.IsValid() {
		return nil, poison("unknown order status %q", status)
	}
	if err := pricing.ValidateContactInfo(evt.Customer).Err(); err != nil {
		return nil, errors.Wrap(rabbitmq.ErrPoison, err.Error())
	}
	phone, _ := pricing.NormalizePhone(evt.Customer.Phone)

	order := &model.Order{
		BaseModel:  model.BaseModel{ID: evt.OrderID},
		ResellerID: evt.ResellerID,
		Customer: model.CustomerInfo{
			Name:  evt.Customer.Name,
			Email: evt.Customer.Email,
			Phone: phone,
		},
		Status: status,
	}
	if evt.Customer.Address != nil {
		order.Customer.Address = *evt.Customer.Address
	}
	if !evt.SettledAt.IsZero() {
		order.CreatedAt = evt.SettledAt
	}

	for i, item := range evt.Items {
		if item.ProductID == uuid.Nil {
			return nil, poison("item %d: product_id is required", i)
		}
		if item.Quantity < 1 {
			return nil, poison("item %d: quantity must be positive", i)
		}
		if item.BasePrice < 0 || item.SellingPrice < 0 {
			return nil, poison("item %d: prices cannot be negative", i)
		}
		order.Items = append(order.Items, model.OrderItem{
			ProductID:         item.ProductID,
			ResellerProductID: item.ResellerProductID,
			Name:              item.Name,
			BasePrice:         item.BasePrice,
			SellingPrice:      item.SellingPrice,
			CommissionRate:    item.CommissionRate,
			Quantity:          item.Quantity,
		})
	}
	// totals are recomputed, never trusted from the publisher
	order.Total = order.ComputeTotal()
	return order, nil
}

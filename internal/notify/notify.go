// Package notify is the fire-and-forget sink stores use to report
// user-facing outcomes ("added to cart", "price updated").
package notify

import (
	"context"
	"log/slog"
	"sync"
)

type EventType string

const (
	EventCartItemAdded        EventType = "cart_item_added"
	EventCartItemRemoved      EventType = "cart_item_removed"
	EventCartItemUpdated      EventType = "cart_item_updated"
	EventCartCleared          EventType = "cart_cleared"
	EventProductPriceUpdated  EventType = "product_price_updated"
	EventProductActiveChanged EventType = "product_active_changed"
	EventProductListed        EventType = "product_listed"
	EventDashboardLoaded      EventType = "dashboard_loaded"
	EventDashboardFailed      EventType = "dashboard_failed"
	EventBrandProductCreated  EventType = "brand_product_created"
	EventBrandProductUpdated  EventType = "brand_product_updated"
	EventOrderSettled         EventType = "order_settled"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

type Event struct {
	Type    EventType `json:"type"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	// Scope restricts delivery to subscribers of one reseller or cart. Empty means broadcast.
	Scope string                 `json:"scope,omitempty"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

type Notifier interface {
	Notify(evt Event)
}

type NotifierFunc func(Event)

func (f NotifierFunc) Notify(evt Event) { f(evt) }

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}

// Nop discards every event.
func Nop() Notifier { return nopNotifier{} }

type logNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier writes events to the logger; error-level events log at Warn.
func NewLogNotifier(logger *slog.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(evt Event) {
	level := slog.LevelInfo
	if evt.Level == LevelError {
		level = slog.LevelWarn
	}
	n.logger.Log(context.Background(), level, evt.Message, "event", string(evt.Type), "scope", evt.Scope)
}

type multi []Notifier

func (m multi) Notify(evt Event) {
	for _, n := range m {
		n.Notify(evt)
	}
}

// Multi fans an event out to every notifier in order.
func Multi(notifiers ...Notifier) Notifier {
	return multi(notifiers)
}

// Recorder keeps every event it receives. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in arrival order.
func (r *Recorder) Types() []EventType {
	events := r.Events()
	types := make([]EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}

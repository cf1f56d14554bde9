// Package bot wires inbound chat messages and the order change feed onto a
// single dispatch loop.
package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/djenggot/orderbot/internal/feed"
	"github.com/djenggot/orderbot/internal/notify"
	"github.com/djenggot/orderbot/internal/observability/metrics"
	"github.com/djenggot/orderbot/internal/order"
	"github.com/djenggot/orderbot/internal/session"
	"github.com/djenggot/orderbot/pkg/logging"
)

const (
	cmdOrder       = "!pesan"
	cmdStatus      = "!status"
	cmdCancel      = "!batal"
	cmdCancelAlias = "!cancel"
)

// Messenger delivers outbound texts to a customer.
type Messenger interface {
	SendText(ctx context.Context, recipientID, body string) error
}

type orderStore interface {
	Add(ctx context.Context, draft order.Draft) (*order.Order, error)
	LatestByCustomer(ctx context.Context, customerID string) (*order.Order, error)
}

type changeIndex interface {
	Apply(e feed.Event) *notify.Notification
}

// InboundMessage is one chat message as seen by the dispatcher.
type InboundMessage struct {
	SenderID string
	IsGroup  bool
	Body     string
}

// Config assembles the dispatcher's collaborators.
type Config struct {
	Messenger Messenger
	Orders    orderStore
	Sessions  session.Store
	Index     changeIndex
	Logger    *logging.Logger
	Metrics   *metrics.BotMetrics
	Location  *time.Location

	InboundQueueSize int
	FeedQueueSize    int
}

// Dispatcher owns the session table and the latest-order index access path.
// All handling happens on the single goroutine inside Run, so no two
// handlers ever mutate shared state concurrently.
type Dispatcher struct {
	messenger Messenger
	orders    orderStore
	sessions  session.Store
	index     changeIndex
	logger    *logging.Logger
	metrics   *metrics.BotMetrics
	loc       *time.Location

	inbound chan InboundMessage
	events  chan feed.Event
}

// New creates a Dispatcher.
func New(cfg Config) *Dispatcher {
	if cfg.Messenger == nil {
		panic("bot: messenger required")
	}
	if cfg.Orders == nil {
		panic("bot: order store required")
	}
	if cfg.Sessions == nil {
		panic("bot: session store required")
	}
	if cfg.Index == nil {
		panic("bot: change index required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	inboundSize := cfg.InboundQueueSize
	if inboundSize <= 0 {
		inboundSize = 256
	}
	feedSize := cfg.FeedQueueSize
	if feedSize <= 0 {
		feedSize = 256
	}
	return &Dispatcher{
		messenger: cfg.Messenger,
		orders:    cfg.Orders,
		sessions:  cfg.Sessions,
		index:     cfg.Index,
		logger:    logger,
		metrics:   cfg.Metrics,
		loc:       loc,
		inbound:   make(chan InboundMessage, inboundSize),
		events:    make(chan feed.Event, feedSize),
	}
}

// EnqueueInbound offers a chat message to the dispatch loop without
// blocking. It reports false when the queue is full; the webhook layer
// turns that into a retryable rejection.
func (d *Dispatcher) EnqueueInbound(m InboundMessage) bool {
	select {
	case d.inbound <- m:
		return true
	default:
		d.logger.Warn("inbound queue full, rejecting message", "sender", m.SenderID)
		return false
	}
}

// DeliverEvent hands a feed event to the dispatch loop, blocking when the
// queue is full so the feed connection itself applies backpressure.
func (d *Dispatcher) DeliverEvent(ctx context.Context, e feed.Event) error {
	select {
	case d.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes messages and feed events until ctx is cancelled. Each item
// is handled to completion, including its outbound send, before the next
// one starts.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-d.inbound:
			d.handleInbound(ctx, m)
		case e := <-d.events:
			d.handleEvent(ctx, e)
		}
	}
}

func (d *Dispatcher) handleInbound(ctx context.Context, m InboundMessage) {
	if m.IsGroup {
		// Strictly one-to-one; group chatter never touches session state.
		d.metrics.ObserveInbound("group_ignored")
		return
	}

	body := strings.TrimSpace(m.Body)
	cmd := strings.ToLower(body)

	sess, err := d.sessions.Get(ctx, m.SenderID)
	if err != nil {
		// Treat an unreadable session as idle rather than dropping the
		// customer's message on the floor.
		d.logger.Error("session read failed", "error", err, "sender", m.SenderID)
		sess = nil
	}

	switch {
	case cmd == cmdStatus:
		d.metrics.ObserveInbound("command")
		d.replyStatus(ctx, m.SenderID)

	case cmd == cmdOrder:
		d.metrics.ObserveInbound("command")
		fresh := &session.Session{
			Step:  session.StepAwaitingName,
			Draft: order.Draft{CustomerID: m.SenderID},
		}
		if err := d.sessions.Put(ctx, m.SenderID, fresh); err != nil {
			d.logger.Error("session write failed", "error", err, "sender", m.SenderID)
			d.reply(ctx, m.SenderID, replyCommitFailed)
			return
		}
		d.reply(ctx, m.SenderID, replyGreeting)

	case cmd == cmdCancel || cmd == cmdCancelAlias:
		d.metrics.ObserveInbound("command")
		if !sess.Active() {
			d.reply(ctx, m.SenderID, replyHelp)
			return
		}
		if err := d.sessions.Delete(ctx, m.SenderID); err != nil {
			d.logger.Error("session delete failed", "error", err, "sender", m.SenderID)
		}
		d.reply(ctx, m.SenderID, replyCancelled)

	case strings.HasPrefix(cmd, "!"):
		d.metrics.ObserveInbound("command")
		if sess.Active() {
			d.reply(ctx, m.SenderID, replyMidFlowCommand)
			return
		}
		d.reply(ctx, m.SenderID, replyHelp)

	case !sess.Active():
		d.metrics.ObserveInbound("text")
		d.reply(ctx, m.SenderID, replyHelp)

	case body == "":
		d.metrics.ObserveInbound("text")
		d.reply(ctx, m.SenderID, promptFor(sess.Step))

	default:
		d.metrics.ObserveInbound("text")
		d.advance(ctx, m.SenderID, sess, body)
	}
}

// advance consumes one non-empty answer for the current step.
func (d *Dispatcher) advance(ctx context.Context, senderID string, sess *session.Session, answer string) {
	switch sess.Step {
	case session.StepAwaitingName:
		sess.Draft.CustomerName = answer
		sess.Step = session.StepAwaitingFood
		if err := d.sessions.Put(ctx, senderID, sess); err != nil {
			d.logger.Error("session write failed", "error", err, "sender", senderID)
		}
		d.reply(ctx, senderID, replyAskFood)

	case session.StepAwaitingFood:
		sess.Draft.FoodItem = answer
		sess.Step = session.StepAwaitingPayment
		if err := d.sessions.Put(ctx, senderID, sess); err != nil {
			d.logger.Error("session write failed", "error", err, "sender", senderID)
		}
		d.reply(ctx, senderID, replyAskPayment)

	case session.StepAwaitingPayment:
		sess.Draft.PaymentMethod = answer
		// The draft is spent either way; a failed commit means the
		// customer restarts with !pesan.
		if err := d.sessions.Delete(ctx, senderID); err != nil {
			d.logger.Error("session delete failed", "error", err, "sender", senderID)
		}
		committed, err := d.orders.Add(ctx, sess.Draft)
		if err != nil {
			d.logger.Error("order commit failed", "error", err, "sender", senderID)
			d.metrics.ObserveCommit("failed")
			d.reply(ctx, senderID, replyCommitFailed)
			return
		}
		d.metrics.ObserveCommit("ok")
		d.logger.Info("order committed", "order_id", committed.ID, "customer_id", committed.CustomerID)
		d.reply(ctx, senderID, renderConfirmation(committed))

	default:
		d.reply(ctx, senderID, replyHelp)
	}
}

func (d *Dispatcher) replyStatus(ctx context.Context, senderID string) {
	o, err := d.orders.LatestByCustomer(ctx, senderID)
	if errors.Is(err, order.ErrNoOrders) {
		d.reply(ctx, senderID, replyNoOrders)
		return
	}
	if err != nil {
		d.logger.Error("status query failed", "error", err, "sender", senderID)
		d.reply(ctx, senderID, replyStatusFailed)
		return
	}
	d.reply(ctx, senderID, renderStatus(o, d.loc))
}

func (d *Dispatcher) handleEvent(ctx context.Context, e feed.Event) {
	d.metrics.ObserveFeedEvent(string(e.Type))

	n := d.index.Apply(e)
	if n == nil {
		if e.Type == feed.Modified {
			d.metrics.ObserveNotification("suppressed")
		}
		return
	}

	if err := d.messenger.SendText(ctx, n.CustomerID, renderNotification(n)); err != nil {
		// Transport failure: log and move on, never crash the loop.
		d.logger.Error("status notification send failed",
			"error", err, "customer_id", n.CustomerID, "order_id", n.OrderID)
		d.metrics.ObserveNotification("send_failed")
		return
	}
	d.metrics.ObserveNotification("sent")
	d.logger.Info("status notification sent",
		"customer_id", n.CustomerID, "order_id", n.OrderID, "status", n.Status)
}

func (d *Dispatcher) reply(ctx context.Context, to, text string) {
	if err := d.messenger.SendText(ctx, to, text); err != nil {
		d.logger.Error("reply send failed", "error", err, "recipient", to)
	}
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"shopping-list-bot/internal/domain"
	"shopping-list-bot/internal/integrations/line"
	"shopping-list-bot/internal/logger"
	"shopping-list-bot/internal/metrics"
)

type ListStore interface {
	ListItems(ctx context.Context) ([]string, error)
	AddItem(ctx context.Context, name string) error
	DeleteItem(ctx context.Context, name string) (bool, error)
	DeleteAll(ctx context.Context) error
}

type Sender interface {
	Reply(ctx context.Context, replyToken, text string) error
	Push(ctx context.Context, to, text string) error
}

type Recorder interface {
	RecordWebhookEvent(eventType, status string)
	RecordCommand(intent, status string)
	RecordTableReset(strategy, status string, d time.Duration)
}

// ErrorReporter forwards failures that need an operator, such as a dropped
// table, to an error tracker.
type ErrorReporter func(ctx context.Context, err error)

// clearStrategist is implemented by stores that can name their delete-all
// strategy for metrics.
type clearStrategist interface {
	ClearStrategy() string
}

type Options struct {
	// NotifyID receives add confirmations. Empty means the sender.
	NotifyID    string
	Logger      *logger.Logger
	Metrics     Recorder
	ReportError ErrorReporter
}

type ShoppingService struct {
	store    ListStore
	sender   Sender
	notifyID string
	log      *logger.Logger
	metrics  Recorder
	report   ErrorReporter
	now      func() time.Time
}

func NewShoppingService(store ListStore, sender Sender, opts Options) (*ShoppingService, error) {
	if store == nil {
		return nil, errors.New("usecase: list store must not be nil")
	}
	if sender == nil {
		return nil, errors.New("usecase: sender must not be nil")
	}
	s := &ShoppingService{
		store:    store,
		sender:   sender,
		notifyID: opts.NotifyID,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		report:   opts.ReportError,
		now:      time.Now,
	}
	if s.log == nil {
		s.log = logger.New("info")
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	if s.report == nil {
		s.report = func(context.Context, error) {}
	}
	return s, nil
}

// HandleWebhook processes the first event of a LINE callback body. It never
// fails: every problem is logged, counted, and swallowed so the platform
// always gets an acknowledgement.
func (s *ShoppingService) HandleWebhook(ctx context.Context, body []byte) {
	defer func() {
		if r := recover(); r != nil {
			err := newError(ErrorInternal, "panic_recovered", fmt.Errorf("panic while handling webhook: %v", r))
			s.log.WithField("code", string(err.Code)).WithError(err).Error("recovered from panic", "stack", string(debug.Stack()))
			s.metrics.RecordWebhookEvent("panic", metrics.StatusError)
			s.report(ctx, err)
		}
	}()

	ev, count, err := line.ParseFirstEvent(body)
	if err != nil {
		s.metrics.RecordWebhookEvent("invalid", metrics.StatusError)
		s.log.WithError(newError(ErrorInvalidPayload, "decode_failed", err)).Warn("discarding malformed webhook body")
		return
	}
	if count == 0 {
		s.metrics.RecordWebhookEvent("none", metrics.StatusIgnored)
		s.log.Debug("webhook carried no events")
		return
	}

	log := s.log.WithRequestID(ev.WebhookEventID).WithField("event_type", ev.Type)
	if count > 1 {
		log.Info("only the first event of the batch is handled", "event_count", count)
	}
	if isIgnored(ev) {
		s.metrics.RecordWebhookEvent(ev.Type, metrics.StatusIgnored)
		log.Debug("event ignored")
		return
	}

	if err := s.handleEvent(ctx, log, ev); err != nil {
		s.metrics.RecordWebhookEvent(ev.Type, metrics.StatusError)
		logFailure(log, err)
		return
	}
	s.metrics.RecordWebhookEvent(ev.Type, metrics.StatusSuccess)
}

// HandleEvent routes one decoded event. Unknown event types and non-text
// messages are ignored without touching the store or the messaging API.
func (s *ShoppingService) HandleEvent(ctx context.Context, ev domain.InboundEvent) error {
	if isIgnored(ev) {
		return nil
	}
	return s.handleEvent(ctx, s.log.WithRequestID(ev.WebhookEventID).WithField("event_type", ev.Type), ev)
}

func isIgnored(ev domain.InboundEvent) bool {
	switch ev.Type {
	case domain.EventFollow, domain.EventUnfollow:
		return false
	case domain.EventMessage:
		return !ev.IsText
	}
	return true
}

func (s *ShoppingService) handleEvent(ctx context.Context, log *logger.Logger, ev domain.InboundEvent) error {
	switch ev.Type {
	case domain.EventFollow:
		return s.reply(ctx, ev.ReplyToken, HowToUse, "follow_reply_failed")
	case domain.EventUnfollow:
		// LINE rejects an empty text, so this only ever shows up in the logs.
		s.pushBestEffort(ctx, log, ev.UserID, "")
		return nil
	default:
		return s.handleMessage(ctx, log, ev)
	}
}

func (s *ShoppingService) handleMessage(ctx context.Context, log *logger.Logger, ev domain.InboundEvent) error {
	cmd := Classify(ev.Text)
	log = log.WithField("intent", string(cmd.Intent))
	log.Debug("command classified", "item", cmd.Item)

	var err error
	switch cmd.Intent {
	case domain.IntentShowList:
		err = s.showList(ctx, log, ev)
	case domain.IntentShowHelp:
		err = s.reply(ctx, ev.ReplyToken, HowToUse, "help_reply_failed")
	case domain.IntentDeleteItem:
		err = s.deleteItem(ctx, log, ev, cmd.Item)
	case domain.IntentDeleteAll:
		err = s.deleteAll(ctx, log, ev)
	default:
		err = s.addItem(ctx, log, ev, cmd.Item)
	}

	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	s.metrics.RecordCommand(string(cmd.Intent), status)
	return err
}

func (s *ShoppingService) showList(ctx context.Context, log *logger.Logger, ev domain.InboundEvent) error {
	s.pushBestEffort(ctx, log, ev.UserID, msgAck)

	items, err := s.store.ListItems(ctx)
	if err != nil {
		s.replyBestEffort(ctx, log, ev.ReplyToken, msgListFailed)
		return newError(ErrorStore, "list_items_failed", err)
	}
	log.Info("list shown", "item_count", len(items))
	return s.reply(ctx, ev.ReplyToken, formatList(items), "list_reply_failed")
}

func (s *ShoppingService) addItem(ctx context.Context, log *logger.Logger, ev domain.InboundEvent, item string) error {
	if err := s.store.AddItem(ctx, item); err != nil {
		s.replyBestEffort(ctx, log, ev.ReplyToken, msgAddFailed(item))
		return newError(ErrorStore, "add_item_failed", err)
	}
	log.Info("item added", "item", item)

	to := s.notifyID
	if to == "" {
		to = ev.UserID
	}
	if err := s.sender.Push(ctx, to, msgAdded(item)); err != nil {
		return newError(ErrorMessaging, "add_notify_failed", err)
	}
	return nil
}

func (s *ShoppingService) deleteItem(ctx context.Context, log *logger.Logger, ev domain.InboundEvent, item string) error {
	removed, err := s.store.DeleteItem(ctx, item)
	if err != nil {
		s.replyBestEffort(ctx, log, ev.ReplyToken, msgDeleteFailed(item))
		return newError(ErrorStore, "delete_item_failed", err)
	}
	log.Info("item deleted", "item", item, "removed", removed)
	if !removed {
		return s.reply(ctx, ev.ReplyToken, msgNotInList(item), "delete_reply_failed")
	}
	return s.reply(ctx, ev.ReplyToken, msgDeleted, "delete_reply_failed")
}

func (s *ShoppingService) deleteAll(ctx context.Context, log *logger.Logger, ev domain.InboundEvent) error {
	s.pushBestEffort(ctx, log, ev.UserID, msgDeleteAllWait)

	strategy := "unknown"
	if cs, ok := s.store.(clearStrategist); ok {
		strategy = cs.ClearStrategy()
	}
	log = log.WithField("strategy", strategy)

	start := s.now()
	err := s.store.DeleteAll(ctx)
	elapsed := s.now().Sub(start)
	if err != nil {
		s.metrics.RecordTableReset(strategy, metrics.StatusError, elapsed)
		if errors.Is(err, domain.ErrTableMissing) {
			s.report(ctx, err)
			s.replyOrPush(ctx, log, ev, msgTableMissing)
			return newError(ErrorTableMissing, "table_not_recreated", err)
		}
		s.replyOrPush(ctx, log, ev, msgDeleteAllFailed)
		return newError(ErrorStore, "delete_all_failed", err)
	}
	s.metrics.RecordTableReset(strategy, metrics.StatusSuccess, elapsed)
	log.Info("list cleared", "duration", elapsed.String())

	if err := s.replyOrPush(ctx, log, ev, msgDeletedAll); err != nil {
		return newError(ErrorMessaging, "delete_all_reply_failed", err)
	}
	return nil
}

func (s *ShoppingService) reply(ctx context.Context, replyToken, text, reason string) error {
	if err := s.sender.Reply(ctx, replyToken, text); err != nil {
		return newError(ErrorMessaging, reason, err)
	}
	return nil
}

func (s *ShoppingService) replyBestEffort(ctx context.Context, log *logger.Logger, replyToken, text string) {
	if err := s.sender.Reply(ctx, replyToken, text); err != nil {
		log.WithError(err).Warn("failure reply not delivered")
	}
}

func (s *ShoppingService) pushBestEffort(ctx context.Context, log *logger.Logger, to, text string) {
	if err := s.sender.Push(ctx, to, text); err != nil {
		log.WithError(err).Warn("push not delivered")
	}
}

// replyOrPush replies and falls back to a push, since a slow table reset can
// outlive the reply token.
func (s *ShoppingService) replyOrPush(ctx context.Context, log *logger.Logger, ev domain.InboundEvent, text string) error {
	replyErr := s.sender.Reply(ctx, ev.ReplyToken, text)
	if replyErr == nil {
		return nil
	}
	log.WithError(replyErr).Warn("reply failed, pushing instead")
	if err := s.sender.Push(ctx, ev.UserID, text); err != nil {
		return errors.Join(replyErr, err)
	}
	return nil
}

func logFailure(log *logger.Logger, err error) {
	var ue *Error
	if errors.As(err, &ue) {
		log = log.WithField("code", string(ue.Code)).WithField("reason", ue.Reason)
		if ue.Err != nil {
			log = log.WithError(ue.Err)
		}
	} else {
		log = log.WithError(err)
	}
	log.Error("webhook event failed")
}

type nopRecorder struct{}

func (nopRecorder) RecordWebhookEvent(string, string) {}
func (nopRecorder) RecordCommand(string, string) {}
func (nopRecorder) RecordTableReset(string, string, time.Duration) {}

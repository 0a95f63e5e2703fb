package notification

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kursant77/ajabo-f69de2d8/internal/application"
	domorder "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/profile"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
)

const (
	notificationService = "notification-service"
	useCaseNotify       = "notification.order_status"
	senderPeer          = "notifier"
)

// Skip reasons reported when nothing was sent.
const (
	SkipAwaitingPayment   = "awaiting_payment"
	SkipNoRecipient       = "no_recipient"
	SkipUnsupportedStatus = "unsupported_status"
)

// ProfileFinder resolves a customer's Telegram id from the phone they ordered with.
type ProfileFinder interface {
	FindByPhone(ctx context.Context, phone string) (*profile.Profile, error)
}

type NotifyInput struct {
	Order domorder.Order
	// LookupByPhone allows resolving the recipient through the profile table.
	LookupByPhone bool
}

type NotifyResult struct {
	Sent         bool
	Notification Notification
	SkipReason   string
}

type NotifyUseCase struct {
	sender   Sender
	profiles ProfileFinder

	in application.Instruments
}

func NewNotifyUseCase(sender Sender, profiles ProfileFinder, tel observability.Observability) *NotifyUseCase {
	return &NotifyUseCase{
		sender:   sender,
		profiles: profiles,
		in:       application.NewInstruments(tel, notificationService),
	}
}

func (uc *NotifyUseCase) Execute(ctx context.Context, cmd NotifyInput) (_ *NotifyResult, err error) {
	o := cmd.Order
	logger := logctx.FromOr(ctx, uc.in.Log).With(
		observability.F("use_case", useCaseNotify),
		observability.F("order_id", o.ID),
		observability.F("order_status", string(o.Status)),
	)

	ctx, span := uc.in.Tracer.Start(ctx, application.SpanPrefix+"NotifyOrderStatus",
		attribute.String("use_case", useCaseNotify),
		attribute.String("order.id", o.ID),
		attribute.String("order.status", string(o.Status)),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	res := &NotifyResult{}

	defer func() {
		fields := []observability.Field{observability.F("sent", res.Sent)}
		if res.SkipReason != "" {
			fields = append(fields, observability.F("skip_reason", res.SkipReason))
		}
		uc.in.Finish(ctx, logger, span, useCaseNotify, outcome, statusText, start, err, fields...)
	}()

	if o.Status == domorder.StatusPendingPayment {
		outcome, statusText = "skipped", "AWAITING_PAYMENT"
		res.SkipReason = SkipAwaitingPayment
		return res, nil
	}
	status := TranslateStatus(o.Status)
	if !Notifiable(status) {
		outcome, statusText = "skipped", "UNSUPPORTED_STATUS"
		res.SkipReason = SkipUnsupportedStatus
		return res, nil
	}

	recipient, err := uc.recipient(ctx, o, cmd.LookupByPhone)
	if err != nil {
		outcome, statusText = "error", "RECIPIENT_LOOKUP_FAILED"
		return res, err
	}
	if recipient == 0 {
		outcome, statusText = "skipped", "NO_RECIPIENT"
		res.SkipReason = SkipNoRecipient
		return res, nil
	}

	res.Notification = Notification{
		OrderID:        o.ID,
		TelegramUserID: recipient,
		Status:         status,
		ProductName:    o.ProductName,
		OrderType:      string(o.OrderType),
	}

	sendStart := time.Now()
	if err := uc.sender.Send(ctx, res.Notification); err != nil {
		uc.in.External(senderPeer, res.Notification.Status, "error", sendStart)
		outcome, statusText = "error", "SEND_FAILED"
		return res, fmt.Errorf("notification: send: %w", err)
	}
	uc.in.External(senderPeer, res.Notification.Status, "success", sendStart)
	res.Sent = true
	return res, nil
}

func (uc *NotifyUseCase) recipient(ctx context.Context, o domorder.Order, lookup bool) (int64, error) {
	if id := parseChatID(o.TelegramUserID); id != 0 {
		return id, nil
	}
	if !lookup || uc.profiles == nil || o.PhoneNumber == "" {
		return 0, nil
	}
	p, err := uc.profiles.FindByPhone(ctx, o.PhoneNumber)
	switch {
	case errors.Is(err, profile.ErrNotFound):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("notification: find profile: %w", err)
	}
	return parseChatID(p.TelegramID), nil
}

func parseChatID(raw string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

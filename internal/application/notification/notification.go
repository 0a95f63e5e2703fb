// Package notification tells customers about their order's progress through a Sender.
package notification

import (
	"context"
	"errors"

	domorder "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
)

var (
	ErrUnsupportedStatus = errors.New("notification: status has no message")
	ErrRecipientBlocked  = errors.New("notification: recipient blocked the bot")
	ErrRejected          = errors.New("notification: rejected by channel")
)

// Vocabulary understood by the notification channel.
const (
	StatusConfirmed  = "confirmed"
	StatusReady      = "ready"
	StatusDelivering = "delivering"
	StatusDelivered  = "delivered"
)

// Notification is the payload every channel receives. Its JSON form is the webhook body.
type Notification struct {
	OrderID        string `json:"order_id"`
	TelegramUserID int64  `json:"telegram_user_id"`
	Status         string `json:"status"`
	ProductName    string `json:"product_name,omitempty"`
	OrderType      string `json:"order_type,omitempty"`
}

// Sender delivers one notification.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// Notifiable reports whether the channel has a message for a translated status.
func Notifiable(status string) bool {
	switch status {
	case StatusConfirmed, StatusReady, StatusDelivering, StatusDelivered:
		return true
	}
	return false
}

// TranslateStatus maps an order status to the channel vocabulary.
func TranslateStatus(s domorder.Status) string {
	switch s {
	case domorder.StatusOnWay:
		return StatusDelivering
	case domorder.StatusPending:
		return StatusConfirmed
	default:
		return string(s)
	}
}

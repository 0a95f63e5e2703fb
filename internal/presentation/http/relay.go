package httppresentation

import (
	"errors"
	"net/http"
	"strconv"

	appnotification "github.com/kursant77/ajabo-f69de2d8/internal/application/notification"
	"github.com/kursant77/ajabo-f69de2d8/internal/application/validation"
	domainprofile "github.com/kursant77/ajabo-f69de2d8/internal/domain/profile"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability/logctx"
)

type orderUpdateRequest struct {
	OrderID        string     `json:"order_id"`
	TelegramUserID flexString `json:"telegram_user_id"`
	Status         string     `json:"status"`
	ProductName    string     `json:"product_name"`
	OrderType      string     `json:"order_type"`
}

// handleOrderUpdate accepts the webhook body and delivers it through the bot.
func (h *Handler) handleOrderUpdate(w http.ResponseWriter, r *http.Request) {
	if h.deps.Relay == nil {
		writeDomainError(w, errUnavailable)
		return
	}
	var req orderUpdateRequest
	if err := decodeJSON(r.Context(), w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	chatID, err := strconv.ParseInt(string(req.TelegramUserID), 10, 64)
	if err != nil || chatID == 0 || req.OrderID == "" || req.Status == "" {
		writeDomainError(w, validation.Wrap(errors.New("order_id, telegram_user_id and status are required")))
		return
	}

	err = h.deps.Relay.Send(r.Context(), appnotification.Notification{
		OrderID:        req.OrderID,
		TelegramUserID: chatID,
		Status:         req.Status,
		ProductName:    req.ProductName,
		OrderType:      req.OrderType,
	})
	if err != nil {
		logctx.FromOr(r.Context(), h.log).Warn("order_update_relay_failed",
			observability.F("order_id", req.OrderID),
			observability.F("status", req.Status),
			observability.F("error", err),
		)
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type profileRequest struct {
	TelegramID flexString `json:"telegram_id" validate:"required,numeric"`
	Phone      string     `json:"phone" validate:"required,uzphone"`
	FullName   string     `json:"full_name"`
	Username   string     `json:"username"`
}

// handleUpsertProfile links a Telegram account to the phone it shared with the bot.
func (h *Handler) handleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	if h.deps.Profiles == nil {
		writeDomainError(w, errUnavailable)
		return
	}
	var req profileRequest
	if err := decodeJSON(r.Context(), w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	req.Phone = domainprofile.NormalizePhone(req.Phone)
	if err := validation.Struct(req); err != nil {
		writeDomainError(w, err)
		return
	}

	p := &domainprofile.Profile{
		TelegramID: string(req.TelegramID),
		Phone:      req.Phone,
		FullName:   req.FullName,
		Username:   req.Username,
		UpdatedAt:  h.now().UTC(),
	}
	if err := h.deps.Profiles.Upsert(r.Context(), p); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"telegram_id": p.TelegramID, "phone": p.Phone})
}

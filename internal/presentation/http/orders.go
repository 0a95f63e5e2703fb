package httppresentation

import (
	"net/http"

	appOrder "github.com/kursant77/ajabo-f69de2d8/internal/application/order"
	appPayment "github.com/kursant77/ajabo-f69de2d8/internal/application/payment"
	domaincatalog "github.com/kursant77/ajabo-f69de2d8/internal/domain/catalog"
)

type createOrderRequest struct {
	ProductID      string     `json:"product_id"`
	Quantity       int        `json:"quantity"`
	CustomerName   string     `json:"customer_name"`
	PhoneNumber    string     `json:"phone_number"`
	Address        string     `json:"address"`
	OrderType      string     `json:"order_type"`
	PaymentMethod  string     `json:"payment_method"`
	TelegramUserID flexString `json:"telegram_user_id"`
}

type createOrderResponse struct {
	OrderID    string `json:"order_id"`
	DisplayID  string `json:"display_id"`
	Status     string `json:"status"`
	OrderType  string `json:"order_type"`
	TotalPrice int64  `json:"total_price"`
	PaymentURL string `json:"payment_url,omitempty"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	if h.deps.CreateOrder == nil {
		writeDomainError(w, errUnavailable)
		return
	}
	var req createOrderRequest
	if err := decodeJSON(r.Context(), w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := h.deps.CreateOrder.Execute(r.Context(), appOrder.CreateOrderInput{
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		CustomerName:   req.CustomerName,
		PhoneNumber:    req.PhoneNumber,
		Address:        req.Address,
		OrderType:      req.OrderType,
		PaymentMethod:  req.PaymentMethod,
		TelegramUserID: string(req.TelegramUserID),
		ClientID:       clientID(r),
		UserAgent:      r.UserAgent(),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createOrderResponse{
		OrderID:    result.OrderID,
		DisplayID:  result.DisplayID,
		Status:     string(result.Status),
		OrderType:  string(result.OrderType),
		TotalPrice: result.TotalPrice,
		PaymentURL: result.PaymentURL,
	})
}

func (h *Handler) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orders, err := h.deps.Orders.MyOrders(r.Context(), q.Get("telegram_user_id"), q.Get("phone"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderList(orders))
}

func (h *Handler) handleReceipt(w http.ResponseWriter, r *http.Request) {
	text, err := h.deps.Orders.Receipt(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

type confirmPaymentRequest struct {
	OrderID string     `json:"order_id"`
	Method  string     `json:"method"`
	Amount  flexString `json:"amount"`
}

type confirmPaymentResponse struct {
	Order            orderResponse `json:"order"`
	AlreadyConfirmed bool          `json:"already_confirmed"`
}

// handleConfirmPayment receives the query of the provider's success page, relayed by the storefront.
func (h *Handler) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	if h.deps.ConfirmPayment == nil {
		writeDomainError(w, errUnavailable)
		return
	}
	var req confirmPaymentRequest
	if err := decodeJSON(r.Context(), w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := h.deps.ConfirmPayment.Execute(r.Context(), appPayment.ConfirmPaymentInput{
		OrderID: req.OrderID,
		Method:  req.Method,
		Amount:  string(req.Amount),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, confirmPaymentResponse{
		Order:            toOrderResponse(result.Order),
		AlreadyConfirmed: result.AlreadyConfirmed,
	})
}

type paymentLinkResponse struct {
	OrderID    string `json:"order_id"`
	PaymentURL string `json:"payment_url"`
}

func (h *Handler) handlePaymentLink(w http.ResponseWriter, r *http.Request) {
	if h.deps.PaymentLink == nil {
		writeDomainError(w, errUnavailable)
		return
	}
	result, err := h.deps.PaymentLink.Execute(r.Context(), appPayment.PaymentLinkInput{
		OrderID:   r.PathValue("id"),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentLinkResponse{OrderID: result.Order.ID, PaymentURL: result.URL})
}

func (h *Handler) handlePublicSettings(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.Settings.Public(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleMenu(w http.ResponseWriter, r *http.Request) {
	products, err := h.deps.Catalog.ListProducts(r.Context(), domaincatalog.ProductFilter{
		Category:      r.URL.Query().Get("category"),
		AvailableOnly: true,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductList(products))
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.deps.Catalog.ListCategories(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/kursant77/ajabo-f69de2d8/internal/application"
	appauth "github.com/kursant77/ajabo-f69de2d8/internal/application/auth"
	appcatalog "github.com/kursant77/ajabo-f69de2d8/internal/application/catalog"
	appinventory "github.com/kursant77/ajabo-f69de2d8/internal/application/inventory"
	appnotification "github.com/kursant77/ajabo-f69de2d8/internal/application/notification"
	appOrder "github.com/kursant77/ajabo-f69de2d8/internal/application/order"
	appPayment "github.com/kursant77/ajabo-f69de2d8/internal/application/payment"
	appsettings "github.com/kursant77/ajabo-f69de2d8/internal/application/settings"
	appstats "github.com/kursant77/ajabo-f69de2d8/internal/application/stats"
	"github.com/kursant77/ajabo-f69de2d8/internal/application/validation"
	domaincatalog "github.com/kursant77/ajabo-f69de2d8/internal/domain/catalog"
	domainInventory "github.com/kursant77/ajabo-f69de2d8/internal/domain/inventory"
	domainOrder "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	domainprofile "github.com/kursant77/ajabo-f69de2d8/internal/domain/profile"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/storage"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability/logctx"
)

// Deps collects what the routes call into. Optional parts may be nil; their routes then answer 503.
type Deps struct {
	CreateOrder    application.UseCase[appOrder.CreateOrderInput, *appOrder.CreateOrderResult]
	UpdateStatus   application.UseCase[appOrder.UpdateStatusInput, *appOrder.UpdateStatusResult]
	ConfirmPayment application.UseCase[appPayment.ConfirmPaymentInput, *appPayment.ConfirmPaymentResult]
	PaymentLink    application.UseCase[appPayment.PaymentLinkInput, *appPayment.PaymentLinkResult]

	Orders    *appOrder.Service
	Board     *appOrder.Board
	Warehouse *appinventory.WarehouseService
	Catalog   *appcatalog.Service
	Settings  *appsettings.Service
	Stats     *appstats.Service
	Auth      *appauth.Service

	// Relay delivers notifications posted to /api/order-update.
	Relay    appnotification.Sender
	Profiles domainprofile.Repository
	// APIKey guards the bot-facing routes.
	APIKey string

	// Metrics and Uploads are mounted as-is when set.
	Metrics http.Handler
	Uploads http.Handler
}

type Handler struct {
	deps Deps
	now  func() time.Time
	log  observability.Logger
	tel  observability.Observability

	heartbeat time.Duration
	closing   chan struct{}
	closeOnce sync.Once
}

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
	headerClientID       = "X-Client-ID"
	headerAPIKey         = "X-API-Key"

	maxBodyBytes   = 1 << 20
	maxUploadBytes = 10 << 20
)

func NewHandler(deps Deps, logger observability.Logger, tel observability.Observability) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = tel.Logger()
	}
	return &Handler{
		deps:      deps,
		now:       time.Now,
		log:       baseLogger.With(observability.F("component", componentHTTPHandler)),
		tel:       tel,
		heartbeat: 25 * time.Second,
		closing:   make(chan struct{}),
	}
}

// CloseStreams ends open event streams so a graceful shutdown does not wait on them.
func (h *Handler) CloseStreams() {
	h.closeOnce.Do(func() { close(h.closing) })
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// Wire each route with middlewares:
	// Trace → ObservabilityMiddleware (request logger) → Access log → HTTP metrics → Guard → Handler
	h.muxHandle(mux, http.MethodGet, "/health", h.handleHealth)

	// storefront
	h.muxHandle(mux, http.MethodGet, "/api/settings", h.handlePublicSettings)
	h.muxHandle(mux, http.MethodGet, "/api/menu", h.handleMenu)
	h.muxHandle(mux, http.MethodGet, "/api/categories", h.handleListCategories)
	h.muxHandle(mux, http.MethodPost, "/api/orders", h.handleCreateOrder)
	h.muxHandle(mux, http.MethodGet, "/api/orders/mine", h.handleMyOrders)
	h.muxHandle(mux, http.MethodGet, "/api/orders/{id}/receipt", h.handleReceipt)
	h.muxHandle(mux, http.MethodGet, "/api/orders/{id}/payment-link", h.handlePaymentLink)
	h.muxHandle(mux, http.MethodPost, "/api/payments/confirm", h.handleConfirmPayment)

	// staff
	h.muxHandle(mux, http.MethodPost, "/api/auth/login", h.handleLogin)

	staff := h.requireRole(appauth.RoleAdmin, appauth.RoleDelivery)
	h.muxHandle(mux, http.MethodGet, "/api/admin/orders", staff(h.handleListOrders))
	h.muxHandle(mux, http.MethodGet, "/api/admin/orders/active", staff(h.handleActiveOrders))
	h.muxHandle(mux, http.MethodGet, "/api/admin/orders/stream", staff(h.handleOrderStream))
	h.muxHandle(mux, http.MethodPatch, "/api/admin/orders/{id}/status", staff(h.handleUpdateStatus))

	admin := h.requireRole(appauth.RoleAdmin)
	h.muxHandle(mux, http.MethodGet, "/api/admin/stats", admin(h.handleStats))

	h.muxHandle(mux, http.MethodGet, "/api/admin/warehouse", admin(h.handleListStock))
	h.muxHandle(mux, http.MethodGet, "/api/admin/warehouse/low", admin(h.handleLowStock))
	h.muxHandle(mux, http.MethodPost, "/api/admin/warehouse", admin(h.handleAddStock))
	h.muxHandle(mux, http.MethodPut, "/api/admin/warehouse/{id}", admin(h.handleUpdateStock))
	h.muxHandle(mux, http.MethodDelete, "/api/admin/warehouse/{id}", admin(h.handleDeleteStock))
	h.muxHandle(mux, http.MethodPost, "/api/admin/warehouse/{id}/restock", admin(h.handleRestock))

	h.muxHandle(mux, http.MethodGet, "/api/admin/products", admin(h.handleListProducts))
	h.muxHandle(mux, http.MethodPost, "/api/admin/products", admin(h.handleCreateProduct))
	h.muxHandle(mux, http.MethodPut, "/api/admin/products/{id}", admin(h.handleUpdateProduct))
	h.muxHandle(mux, http.MethodDelete, "/api/admin/products/{id}", admin(h.handleDeleteProduct))
	h.muxHandle(mux, http.MethodPatch, "/api/admin/products/{id}/availability", admin(h.handleSetAvailability))
	h.muxHandle(mux, http.MethodPost, "/api/admin/products/{id}/image", admin(h.handleUploadImage))
	h.muxHandle(mux, http.MethodGet, "/api/admin/products/{id}/ingredients", admin(h.handleIngredients))
	h.muxHandle(mux, http.MethodPut, "/api/admin/products/{id}/ingredients", admin(h.handleSetIngredients))

	h.muxHandle(mux, http.MethodPost, "/api/admin/categories", admin(h.handleCreateCategory))
	h.muxHandle(mux, http.MethodDelete, "/api/admin/categories/{slug}", admin(h.handleDeleteCategory))

	h.muxHandle(mux, http.MethodGet, "/api/admin/settings", admin(h.handleGetSettings))
	h.muxHandle(mux, http.MethodPut, "/api/admin/settings", admin(h.handleUpdateSettings))

	// bot
	h.muxHandle(mux, http.MethodPost, "/api/order-update", h.requireAPIKey(h.handleOrderUpdate))
	h.muxHandle(mux, http.MethodPost, "/api/profiles", h.requireAPIKey(h.handleUpsertProfile))

	if h.deps.Metrics != nil {
		mux.Handle("GET /metrics", h.deps.Metrics)
	}
	if h.deps.Uploads != nil {
		mux.Handle("GET /uploads/", h.deps.Uploads)
	}

	return mux
}

func (h *Handler) muxHandle(mux *http.ServeMux, method, route string, handler http.HandlerFunc) {
	// Wrap: Trace → Request Logger → Access Log → Metrics → Handler
	wrapped := h.withTrace(
		ObservabilityMiddleware(
			h.log,
			func(r *http.Request) string {
				return r.Header.Get(headerRequestID)
			},
			clientID,
		)(
			h.withAccessLog(
				h.withHTTPMetrics(handler),
			),
		),
	)

	mux.HandleFunc(method+" "+route, func(w http.ResponseWriter, r *http.Request) {
		// Store stable route template for low-cardinality labels
		ctx := contextWithRoute(r.Context(), route)
		wrapped.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func decodeJSON(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) error {
	_ = ctx
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return validation.Wrap(err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// fail logs unexpected errors before mapping them to a response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if statusFor(err) >= http.StatusInternalServerError {
		logctx.FromOr(r.Context(), h.log).Error("http_handler_error",
			observability.F("route", routeFromContext(r.Context())),
			observability.F("error", err),
		)
	}
	writeDomainError(w, err)
}

func writeDomainError(w http.ResponseWriter, err error) {
	var limited *appOrder.RateLimitError
	if errors.As(err, &limited) {
		secs := int(math.Ceil(limited.RetryAfter.Seconds()))
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", itoa(secs))
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		writeError(w, status, errors.New(http.StatusText(status)))
		return
	}
	writeError(w, status, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, appOrder.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, appauth.ErrInvalidCredentials),
		errors.Is(err, appauth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, appauth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, appPayment.ErrExpired):
		return http.StatusGone
	case errors.Is(err, domainOrder.ErrNotFound),
		errors.Is(err, domainInventory.ErrNotFound),
		errors.Is(err, domaincatalog.ErrNotFound),
		errors.Is(err, domainprofile.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainOrder.ErrConflict),
		errors.Is(err, domainOrder.ErrInvalidTransition),
		errors.Is(err, domainInventory.ErrConflict),
		errors.Is(err, domaincatalog.ErrConflict),
		errors.Is(err, appPayment.ErrNotAwaitingPayment):
		return http.StatusConflict
	case errors.Is(err, appOrder.ErrMethodUnavailable),
		errors.Is(err, appOrder.ErrBelowMinimum),
		errors.Is(err, appOrder.ErrProductMissing),
		errors.Is(err, domaincatalog.ErrUnavailable),
		errors.Is(err, appPayment.ErrLinkUnavailable),
		errors.Is(err, appnotification.ErrUnsupportedStatus):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, appPayment.ErrMismatch),
		errors.Is(err, validation.ErrValidation),
		errors.Is(err, domainInventory.ErrInvalidQuantity),
		errors.Is(err, domainInventory.ErrInvalidAmount),
		errors.Is(err, domainOrder.ErrInvalidQuantity),
		errors.Is(err, domainOrder.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, appnotification.ErrRecipientBlocked),
		errors.Is(err, appnotification.ErrRejected):
		return http.StatusBadGateway
	case errors.Is(err, errUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

var errUnavailable = errors.New("service is not configured")

type routeKey struct{}

// contextWithRoute stores the stable route template in the context so downstream
// metrics/logging can rely on low-cardinality values.
func contextWithRoute(ctx context.Context, route string) context.Context {
	if route == "" {
		return ctx
	}
	return context.WithValue(ctx, routeKey{}, route)
}

func routeFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if route, ok := ctx.Value(routeKey{}).(string); ok && route != "" {
		return route
	}
	return "unknown"
}

package httppresentation

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	appauth "github.com/kursant77/ajabo-f69de2d8/internal/application/auth"
	appcatalog "github.com/kursant77/ajabo-f69de2d8/internal/application/catalog"
	appinventory "github.com/kursant77/ajabo-f69de2d8/internal/application/inventory"
	appOrder "github.com/kursant77/ajabo-f69de2d8/internal/application/order"
	appsettings "github.com/kursant77/ajabo-f69de2d8/internal/application/settings"
	domaincatalog "github.com/kursant77/ajabo-f69de2d8/internal/domain/catalog"
	domainOrder "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability/logctx"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if h.deps.Auth == nil {
		writeDomainError(w, errUnavailable)
		return
	}
	var req loginRequest
	if err := decodeJSON(r.Context(), w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	res, err := h.deps.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		logctx.FromOr(r.Context(), h.log).Warn("staff_login_failed", observability.F("username", req.Username))
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: res.Token, Role: string(res.Role), ExpiresAt: res.ExpiresAt})
}

// ---- orders ----

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orders, err := h.deps.Orders.List(r.Context(), appOrder.ListInput{
		Status: q.Get("status"),
		Limit:  queryInt(q.Get("limit"), 0),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderList(orders))
}

func (h *Handler) handleActiveOrders(w http.ResponseWriter, r *http.Request) {
	if h.deps.Board == nil {
		writeDomainError(w, errUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, toOrderList(h.deps.Board.Active()))
}

type streamChange struct {
	Kind  string        `json:"kind"`
	Order orderResponse `json:"order"`
}

// handleOrderStream pushes the active board followed by every change as server-sent events.
func (h *Handler) handleOrderStream(w http.ResponseWriter, r *http.Request) {
	if h.deps.Board == nil {
		writeDomainError(w, errUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeDomainError(w, errUnavailable)
		return
	}

	changes, cancel := h.deps.Board.Subscribe(64)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, "snapshot", toOrderList(h.deps.Board.Active())); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.closing:
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case c, open := <-changes:
			if !open {
				return
			}
			o := c.Order
			if err := writeEvent(w, string(c.Kind), streamChange{Kind: string(c.Kind), Order: toOrderResponse(&o)}); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

type updateStatusRequest struct {
	Status         string `json:"status"`
	DeliveryPerson string `json:"delivery_person"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	if h.deps.UpdateStatus == nil {
		writeDomainError(w, errUnavailable)
		return
	}
	var req updateStatusRequest
	if err := decodeJSON(r.Context(), w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	in := appOrder.UpdateStatusInput{
		OrderID:        r.PathValue("id"),
		Status:         req.Status,
		Actor:          domainOrder.ActorAdmin,
		DeliveryPerson: req.DeliveryPerson,
	}
	if claims := claimsFromContext(r.Context()); claims != nil && claims.Role == appauth.RoleDelivery {
		in.Actor = domainOrder.ActorDelivery
		in.DeliveryPerson = claims.DisplayName
		if in.DeliveryPerson == "" {
			in.DeliveryPerson = claims.Subject
		}
	}

	res, err := h.deps.UpdateStatus.Execute(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(res.Order))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	dash, err := h.deps.Stats.Dashboard(r.Context(), h.now())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// ---- warehouse ----

type stockRequest struct {
	Name        string  `json:"name"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	MinQuantity float64 `json:"min_quantity"`
}

func (req stockRequest) input() appinventory.StockInput {
	return appinventory.StockInput{
		Name:        req.Name,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		MinQuantity: req.MinQuantity,
	}
}

func (h *Handler) handleListStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.deps.Warehouse.ListStock(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStockList(items))
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.deps.Warehouse.LowStock(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStockList(items))
}

func (h *Handler) handleAddStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := decodeJSON(r.Context(), w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	item, err := h.deps.Warehouse.AddStock(r.Context(), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStockResponse(item))
}

func (h *Handler) handleUpdateStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := decodeJSON(r.Context(), w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	item, err := h.deps.Warehouse.UpdateStock(r.Context(), r.PathValue("id"), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStockResponse(item))
}

func (h *Handler) handleDeleteStock(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Warehouse.DeleteStock(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type restockRequest struct {
	Amount float64 `json:"amount"`
}

func (h *Handler) handleRestock(w http.ResponseWriter, r *http.Request) {
	var req restockRequest
	if err := decodeJSON(r.Context(), w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	item, err := h.deps.Warehouse.Restock(r.Context(), r.PathValue("id"), req.Amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStockResponse(item))
}

func (h *Handler) handleIngredients(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.Warehouse.Ingredients(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toIngredientList(list))
}

func (h *Handler) handleSetIngredients(w http.ResponseWriter, r *http.Request) {
	var req []ingredientPayload
	if err := decodeJSON(r.Context(), w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	in := make([]appinventory.IngredientInput, 0, len(req))
	for _, ing := range req {
		in = append(in, appinventory.IngredientInput{StockItemID: ing.StockItemID, QuantityPerUnit: ing.QuantityPerUnit})
	}
	list, err := h.deps.Warehouse.SetIngredients(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toIngredientList(list))
}

// ---- catalog ----

type productRequest struct {
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Category    string `json:"category"`
	IsAvailable *bool  `json:"is_available"`
}

func (req productRequest) input() appcatalog.ProductInput {
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	return appcatalog.ProductInput{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Image:       req.Image,
		Category:    req.Category,
		IsAvailable: available,
	}
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.deps.Catalog.ListProducts(r.Context(), domaincatalog.ProductFilter{
		Category: r.URL.Query().Get("category"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductList(products))
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r.Context(), w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	p, err := h.deps.Catalog.CreateProduct(r.Context(), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r.Context(), w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	p, err := h.deps.Catalog.UpdateProduct(r.Context(), r.PathValue("id"), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Catalog.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type availabilityRequest struct {
	IsAvailable bool `json:"is_available"`
}

func (h *Handler) handleSetAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := decodeJSON(r.Context(), w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	p, err := h.deps.Catalog.SetAvailability(r.Context(), r.PathValue("id"), req.IsAvailable)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	url, err := h.deps.Catalog.UploadImage(r.Context(), r.PathValue("id"), header.Filename, file)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"image": url})
}

type categoryRequest struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r.Context(), w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	c, err := h.deps.Catalog.CreateCategory(r.Context(), appcatalog.CategoryInput{
		Slug:      req.Slug,
		Name:      req.Name,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(c))
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Catalog.DeleteCategory(r.Context(), r.PathValue("slug")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- settings ----

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.deps.Settings.Current(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(s))
}

type settingsRequest struct {
	CafeName        string          `json:"cafe_name"`
	Address         string          `json:"address"`
	Phone           string          `json:"phone"`
	OpenTime        string          `json:"open_time"`
	CloseTime       string          `json:"close_time"`
	Description     string          `json:"description"`
	DeliveryEnabled bool            `json:"delivery_enabled"`
	MinOrderAmount  int64           `json:"min_order_amount"`
	DeliveryFee     int64           `json:"delivery_fee"`
	Payments        map[string]bool `json:"payments"`
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(r.Context(), w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	s, err := h.deps.Settings.Update(r.Context(), appsettings.UpdateInput{
		CafeName:        req.CafeName,
		Address:         req.Address,
		Phone:           req.Phone,
		OpenTime:        req.OpenTime,
		CloseTime:       req.CloseTime,
		Description:     req.Description,
		DeliveryEnabled: req.DeliveryEnabled,
		MinOrderAmount:  req.MinOrderAmount,
		DeliveryFee:     req.DeliveryFee,
		Payments:        req.Payments,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(s))
}

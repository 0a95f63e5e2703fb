package httppresentation

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	domaincatalog "github.com/kursant77/ajabo-f69de2d8/internal/domain/catalog"
	domainInventory "github.com/kursant77/ajabo-f69de2d8/internal/domain/inventory"
	domainOrder "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	domainsettings "github.com/kursant77/ajabo-f69de2d8/internal/domain/settings"
)

// flexString accepts a JSON string or number. Telegram ids and amounts arrive both ways.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

type orderResponse struct {
	ID                string    `json:"id"`
	DisplayID         string    `json:"display_id"`
	ProductName       string    `json:"product_name"`
	Quantity          int       `json:"quantity"`
	TotalPrice        int64     `json:"total_price"`
	CustomerName      string    `json:"customer_name"`
	PhoneNumber       string    `json:"phone_number"`
	Address           string    `json:"address,omitempty"`
	Status            string    `json:"status"`
	OrderType         string    `json:"order_type"`
	PaymentMethod     string    `json:"payment_method"`
	DeliveryPerson    string    `json:"delivery_person,omitempty"`
	TelegramUserID    string    `json:"telegram_user_id,omitempty"`
	WarehouseDeducted bool      `json:"warehouse_deducted"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toOrderResponse(o *domainOrder.Order) orderResponse {
	return orderResponse{
		ID:                o.ID,
		DisplayID:         domainOrder.DisplayID(o.ID),
		ProductName:       o.ProductName,
		Quantity:          o.Quantity,
		TotalPrice:        o.TotalPrice,
		CustomerName:      o.CustomerName,
		PhoneNumber:       o.PhoneNumber,
		Address:           o.Address,
		Status:            string(o.Status),
		OrderType:         string(o.OrderType),
		PaymentMethod:     string(o.PaymentMethod),
		DeliveryPerson:    o.DeliveryPerson,
		TelegramUserID:    o.TelegramUserID,
		WarehouseDeducted: o.WarehouseDeducted,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

func toOrderList(in []*domainOrder.Order) []orderResponse {
	out := make([]orderResponse, 0, len(in))
	for _, o := range in {
		out = append(out, toOrderResponse(o))
	}
	return out
}

type productResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	Category    string    `json:"category,omitempty"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProductResponse(p *domaincatalog.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Image:       p.Image,
		Category:    p.Category,
		IsAvailable: p.IsAvailable,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductList(in []*domaincatalog.Product) []productResponse {
	out := make([]productResponse, 0, len(in))
	for _, p := range in {
		out = append(out, toProductResponse(p))
	}
	return out
}

type categoryResponse struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

func toCategoryResponse(c *domaincatalog.Category) categoryResponse {
	return categoryResponse{Slug: c.Slug, Name: c.Name, SortOrder: c.SortOrder}
}

type stockResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Quantity    float64   `json:"quantity"`
	Unit        string    `json:"unit"`
	MinQuantity float64   `json:"min_quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toStockResponse(s *domainInventory.StockItem) stockResponse {
	return stockResponse{
		ID:          s.ID,
		Name:        s.Name,
		Quantity:    s.Quantity,
		Unit:        s.Unit,
		MinQuantity: s.MinQuantity,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toStockList(in []*domainInventory.StockItem) []stockResponse {
	out := make([]stockResponse, 0, len(in))
	for _, s := range in {
		out = append(out, toStockResponse(s))
	}
	return out
}

type ingredientPayload struct {
	StockItemID     string  `json:"stock_item_id"`
	QuantityPerUnit float64 `json:"quantity_per_unit"`
}

func toIngredientList(in []domainInventory.Ingredient) []ingredientPayload {
	out := make([]ingredientPayload, 0, len(in))
	for _, ing := range in {
		out = append(out, ingredientPayload{StockItemID: ing.StockItemID, QuantityPerUnit: ing.QuantityPerUnit})
	}
	return out
}

type settingsResponse struct {
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
	UpdatedAt       time.Time       `json:"updated_at"`
}

func toSettingsResponse(s *domainsettings.Settings) settingsResponse {
	payments := make(map[string]bool, len(s.Payments))
	for m, on := range s.Payments {
		payments[string(m)] = on
	}
	return settingsResponse{
		CafeName:        s.CafeName,
		Address:         s.Address,
		Phone:           s.Phone,
		OpenTime:        s.OpenTime,
		CloseTime:       s.CloseTime,
		Description:     s.Description,
		DeliveryEnabled: s.DeliveryEnabled,
		MinOrderAmount:  s.MinOrderAmount,
		DeliveryFee:     s.DeliveryFee,
		Payments:        payments,
		UpdatedAt:       s.UpdatedAt,
	}
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

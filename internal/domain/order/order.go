package order

import (
	"errors"
	"strings"
	"time"

	"github.com/kursant77/ajabo-f69de2d8/internal/domain/payment"
)

var (
	ErrNotFound          = errors.New("order: not found")
	ErrConflict          = errors.New("order: conflict")
	ErrInvalidQuantity   = errors.New("order: quantity must be greater than zero")
	ErrInvalidAmount     = errors.New("order: total price must be zero or greater")
	ErrAddressRequired   = errors.New("order: delivery address is required")
	ErrInvalidStatus     = errors.New("order: unknown status")
	ErrInvalidOrderType  = errors.New("order: unknown order type")
	ErrInvalidTransition = errors.New("order: invalid status transition")
)

// DefaultAddress is stored for orders that carry no address.
const DefaultAddress = "Manzil ko'rsatilmagan"

const minAddressLength = 3

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusPending        Status = "pending"
	StatusReady          Status = "ready"
	StatusOnWay          Status = "on_way"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPendingPayment, StatusPending, StatusReady, StatusOnWay, StatusDelivered, StatusCancelled:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// Terminal reports whether no forward transition leaves the status.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Paid reports whether the status implies the payment has been accepted.
func (s Status) Paid() bool {
	return s != StatusPendingPayment && s != StatusCancelled
}

type Type string

const (
	TypeDelivery Type = "delivery"
	TypeTakeaway Type = "takeaway"
	TypePreorder Type = "preorder"
)

// ParseType maps an empty value to delivery, as legacy rows carry no type.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case "":
		return TypeDelivery, nil
	case TypeDelivery, TypeTakeaway, TypePreorder:
		return t, nil
	}
	return "", ErrInvalidOrderType
}

func (t Type) Label() string {
	switch t {
	case TypeTakeaway:
		return "Olib ketish"
	case TypePreorder:
		return "Bron"
	}
	return "Yetkazib berish"
}

type Order struct {
	ID                string
	ProductName       string
	Quantity          int
	TotalPrice        int64
	CustomerName      string
	PhoneNumber       string
	Address           string
	Status            Status
	OrderType         Type
	PaymentMethod     payment.Method
	DeliveryPerson    string
	TelegramUserID    string
	WarehouseDeducted bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Draft carries the validated fields of a new order.
type Draft struct {
	ProductName    string
	Quantity       int
	TotalPrice     int64
	CustomerName   string
	PhoneNumber    string
	Address        string
	OrderType      Type
	PaymentMethod  payment.Method
	TelegramUserID string
}

// New builds an order in its initial status: pending_payment for online methods, pending otherwise.
func New(id string, d Draft, now time.Time) (*Order, error) {
	if d.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if d.TotalPrice < 0 {
		return nil, ErrInvalidAmount
	}
	if d.OrderType == "" {
		d.OrderType = TypeDelivery
	}
	address := strings.TrimSpace(d.Address)
	if d.OrderType == TypeDelivery && len([]rune(address)) < minAddressLength {
		return nil, ErrAddressRequired
	}
	if address == "" {
		address = DefaultAddress
	}

	status := StatusPending
	if d.PaymentMethod.IsOnline() {
		status = StatusPendingPayment
	}

	now = now.UTC()
	return &Order{
		ID:             id,
		ProductName:    strings.TrimSpace(d.ProductName),
		Quantity:       d.Quantity,
		TotalPrice:     d.TotalPrice,
		CustomerName:   strings.TrimSpace(d.CustomerName),
		PhoneNumber:    d.PhoneNumber,
		Address:        address,
		Status:         status,
		OrderType:      d.OrderType,
		PaymentMethod:  d.PaymentMethod,
		TelegramUserID: d.TelegramUserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// UnitPrice derives the per-item price from the stored total.
func (o *Order) UnitPrice() int64 {
	if o.Quantity <= 0 {
		return 0
	}
	return o.TotalPrice / int64(o.Quantity)
}

// ExpiredAt reports whether an unpaid order has waited longer than ttl.
func (o *Order) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return o.Status == StatusPendingPayment && now.Sub(o.CreatedAt) > ttl
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	return &c
}

func (o *Order) touch(now time.Time) {
	o.UpdatedAt = now.UTC()
}

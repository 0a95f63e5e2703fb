package gormstore

import "time"

type orderRecord struct {
	ID                string `gorm:"primaryKey;size:64"`
	ProductName       string `gorm:"not null"`
	Quantity          int    `gorm:"not null"`
	TotalPrice        int64  `gorm:"not null"`
	CustomerName      string
	PhoneNumber       string `gorm:"index;size:32"`
	Address           string
	Status            string `gorm:"index;size:32;not null"`
	OrderType         string `gorm:"size:16;not null"`
	PaymentMethod     string `gorm:"size:16;not null"`
	DeliveryPerson    string
	TelegramUserID    string    `gorm:"index;size:64"`
	WarehouseDeducted bool      `gorm:"not null;default:false"`
	CreatedAt         time.Time `gorm:"index;not null;autoCreateTime:false"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (orderRecord) TableName() string { return "orders" }

type stockRecord struct {
	ID          string    `gorm:"primaryKey;size:64"`
	Name        string    `gorm:"not null"`
	Quantity    float64   `gorm:"not null;default:0"`
	Unit        string    `gorm:"size:16;not null"`
	MinQuantity float64   `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

func (stockRecord) TableName() string { return "warehouse" }

type ingredientRecord struct {
	ProductID       string  `gorm:"primaryKey;size:64"`
	StockItemID     string  `gorm:"primaryKey;size:64;index"`
	QuantityPerUnit float64 `gorm:"not null"`
}

func (ingredientRecord) TableName() string { return "product_ingredients" }

type productRecord struct {
	ID          string `gorm:"primaryKey;size:64"`
	Name        string `gorm:"not null"`
	Price       int64  `gorm:"not null"`
	Description string
	Image       string
	Category    string    `gorm:"index;size:64"`
	IsAvailable bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

func (productRecord) TableName() string { return "products" }

type categoryRecord struct {
	Slug      string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"not null"`
	SortOrder int    `gorm:"not null;default:0"`
}

func (categoryRecord) TableName() string { return "categories" }

// settingsRecord is always stored with ID 1.
type settingsRecord struct {
	ID                   uint `gorm:"primaryKey;autoIncrement:false"`
	CafeName             string
	Address              string
	Phone                string
	OpenTime             string `gorm:"size:5"`
	CloseTime            string `gorm:"size:5"`
	Description          string
	DeliveryEnabled      bool
	MinOrderAmount       int64
	DeliveryFee          int64
	PaymentCashEnabled   bool
	PaymentClickEnabled  bool
	PaymentPaymeEnabled  bool
	PaymentUzumEnabled   bool
	PaymentPaynetEnabled bool
	UpdatedAt            time.Time `gorm:"autoUpdateTime:false"`
}

func (settingsRecord) TableName() string { return "cafe_settings" }

type profileRecord struct {
	TelegramID string `gorm:"primaryKey;size:64"`
	Phone      string `gorm:"index;size:32"`
	FullName   string
	Username   string
	UpdatedAt  time.Time `gorm:"index;autoUpdateTime:false"`
}

func (profileRecord) TableName() string { return "profiles" }

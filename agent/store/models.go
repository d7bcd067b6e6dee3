package store

import (
	"time"

	"github.com/uptrace/bun"
)

// Product mirrors the warehouse catalog document: stock is a per-location
// quantity map.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID            int64          `bun:"id,pk,autoincrement" json:"id"`
	Name          string         `bun:"name,notnull" json:"name"`
	SKU           string         `bun:"sku" json:"sku"`
	Stock         map[string]int `bun:"stock,type:jsonb" json:"stock"`
	MinStockLevel int            `bun:"min_stock_level" json:"min_stock_level"`
	Price         float64        `bun:"price" json:"price"`
	Cost          float64        `bun:"cost" json:"cost"`
}

// TotalStock sums quantities across all locations.
func (p Product) TotalStock() int {
	total := 0
	for _, qty := range p.Stock {
		total += qty
	}
	return total
}

type SaleItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type Sale struct {
	bun.BaseModel `bun:"table:sales,alias:s"`

	ID          int64      `bun:"id,pk,autoincrement" json:"id"`
	Date        time.Time  `bun:"date,notnull" json:"date"`
	TotalAmount float64    `bun:"total_amount" json:"total_amount"`
	Items       []SaleItem `bun:"items,type:jsonb" json:"items"`
}

type Supplier struct {
	bun.BaseModel `bun:"table:suppliers,alias:sp"`

	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	Name          string `bun:"name,notnull" json:"name"`
	ContactPerson string `bun:"contact_person" json:"contact_person"`
	Email         string `bun:"email" json:"email"`
	Category      string `bun:"category" json:"category"`
}

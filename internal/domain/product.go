package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageFile   string          `json:"imageFile,omitempty"`
	Category    string          `json:"category,omitempty"`
	InStock     bool            `json:"inStock"`
}

type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

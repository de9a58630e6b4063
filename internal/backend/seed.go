package backend

import (
	"fmt"

	"github.com/baderboshnak/golden-shen/internal/domain"
	"github.com/shopspring/decimal"
)

// Seed fills the store with the demo skincare catalog and two accounts:
// admin/admin123 and demo/demo123.
func Seed(s *Store) error {
	if _, err := s.CreateUser("admin", "admin123", domain.RoleAdmin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if _, err := s.CreateUser("demo", "demo123", domain.RoleUser); err != nil {
		return fmt.Errorf("seed demo user: %w", err)
	}

	serums := s.CreateCategory("Serums")
	creams := s.CreateCategory("Creams")
	cleansers := s.CreateCategory("Cleansers")

	products := []domain.Product{
		{Name: "Gold Radiance Serum", Price: decimal.NewFromInt(199), ImageFile: "gold-serum.jpg", Category: serums.ID, InStock: true},
		{Name: "Vitamin C Brightening Serum", Price: decimal.RequireFromString("149.50"), ImageFile: "vitc-serum.jpg", Category: serums.ID, InStock: true},
		{Name: "Night Repair Cream", Price: decimal.NewFromInt(175), ImageFile: "night-cream.jpg", Category: creams.ID, InStock: true},
		{Name: "Hydrating Day Cream", Price: decimal.RequireFromString("120.99"), ImageFile: "day-cream.jpg", Category: creams.ID, InStock: true},
		{Name: "Gentle Foam Cleanser", Price: decimal.NewFromInt(85), ImageFile: "foam-cleanser.jpg", Category: cleansers.ID, InStock: true},
	}
	for _, p := range products {
		s.CreateProduct(p)
	}
	return nil
}

package backend

import (
	"time"

	"github.com/baderboshnak/golden-shen/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine pairs a resolved product with its quantity, in insertion order.
type CartLine struct {
	Product  domain.Product
	Quantity int
}

func (s *Store) Cart(userID string) []CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cartLocked(userID)
}

func (s *Store) cartLocked(userID string) []CartLine {
	entries := s.carts[userID]
	out := make([]CartLine, 0, len(entries))
	for _, e := range entries {
		p, ok := s.products[e.productID]
		if !ok {
			// product deleted since it was added; drop the line
			continue
		}
		out = append(out, CartLine{Product: p, Quantity: e.quantity})
	}
	return out
}

func (s *Store) AddToCart(userID, productID string, quantity int) ([]CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[productID]; !ok {
		return nil, ErrProductNotFound
	}

	entries := s.carts[userID]
	found := false
	for i := range entries {
		if entries[i].productID == productID {
			entries[i].quantity += quantity
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, cartEntry{productID: productID, quantity: quantity})
	}
	s.carts[userID] = entries
	return s.cartLocked(userID), nil
}

func (s *Store) UpdateCartItem(userID, productID string, quantity int) ([]CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.carts[userID]
	for i := range entries {
		if entries[i].productID == productID {
			entries[i].quantity = quantity
			s.carts[userID] = entries
			return s.cartLocked(userID), nil
		}
	}
	return nil, ErrProductNotFound
}

func (s *Store) RemoveCartItem(userID, productID string) []CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.carts[userID]
	for i := range entries {
		if entries[i].productID == productID {
			s.carts[userID] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	return s.cartLocked(userID)
}

// Checkout turns the user's cart into an order and empties the cart.
func (s *Store) Checkout(userID string) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.cartLocked(userID)
	if len(lines) == 0 {
		return domain.Order{}, ErrEmptyCart
	}

	total := decimal.Zero
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, domain.OrderItem{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Price:     l.Product.Price,
			Quantity:  l.Quantity,
			ImageFile: l.Product.ImageFile,
		})
		total = total.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	order := domain.Order{
		ID:         uuid.NewString(),
		UserID:     userID,
		Items:      items,
		TotalPrice: total.Round(2),
		Status:     domain.OrderStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	s.orders[order.ID] = order
	s.orderIDs = append(s.orderIDs, order.ID)
	s.ordersByUser[userID] = append(s.ordersByUser[userID], order.ID)
	delete(s.carts, userID)
	return order, nil
}

func (s *Store) OrdersFor(userID string) []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.ordersByUser[userID]
	out := make([]domain.Order, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.orders[id])
	}
	return out
}

func (s *Store) AllOrders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, 0, len(s.orderIDs))
	for _, id := range s.orderIDs {
		out = append(out, s.orders[id])
	}
	return out
}

func (s *Store) SetOrderStatus(orderID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	order.Status = status
	s.orders[orderID] = order
	return nil
}

package api

import (
	"context"
	"net/http"

	"github.com/baderboshnak/golden-shen/internal/domain"
	"github.com/shopspring/decimal"
)

// cartPayload mirrors the backend cart shape:
// {items: [{product: {_id, name, price, imageFile}, quantity}]}
type cartPayload struct {
	Items []struct {
		Product *struct {
			ID        string          `json:"_id"`
			Name      string          `json:"name"`
			Price     decimal.Decimal `json:"price"`
			ImageFile string          `json:"imageFile"`
		} `json:"product"`
		Quantity int `json:"quantity"`
	} `json:"items"`
}

func (c *Client) mapCart(p cartPayload) domain.CartSnapshot {
	var lines []domain.CartLine
	for _, it := range p.Items {
		if it.Product == nil {
			continue
		}
		image := it.Product.ImageFile
		if image == "" {
			image = "placeholder.jpg"
		}
		lines = append(lines, domain.CartLine{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			UnitPrice: it.Product.Price,
			ImageRef:  c.baseURL + "/assets/products/" + image,
			Quantity:  it.Quantity,
		})
	}
	return domain.BuildSnapshot(lines)
}

func (c *Client) GetCart(ctx context.Context) (domain.CartSnapshot, error) {
	var payload cartPayload
	if err := c.do(ctx, http.MethodGet, "/cart", nil, true, &payload); err != nil {
		return domain.EmptySnapshot(), err
	}
	return c.mapCart(payload), nil
}

func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) (domain.CartSnapshot, error) {
	if !domain.ValidProductID(productID) {
		return domain.EmptySnapshot(), ErrInvalidProductID
	}
	if quantity <= 0 {
		return domain.EmptySnapshot(), ErrInvalidQuantity
	}

	body := map[string]any{"productId": productID, "quantity": quantity}
	var payload cartPayload
	if err := c.do(ctx, http.MethodPost, "/cart/add", body, true, &payload); err != nil {
		return domain.EmptySnapshot(), err
	}
	return c.mapCart(payload), nil
}

func (c *Client) UpdateCartItem(ctx context.Context, productID string, quantity int) (domain.CartSnapshot, error) {
	if !domain.ValidProductID(productID) {
		return domain.EmptySnapshot(), ErrInvalidProductID
	}
	if quantity <= 0 {
		return domain.EmptySnapshot(), ErrInvalidQuantity
	}

	body := map[string]any{"quantity": quantity}
	var payload cartPayload
	if err := c.do(ctx, http.MethodPut, "/cart/item/"+productID, body, true, &payload); err != nil {
		return domain.EmptySnapshot(), err
	}
	return c.mapCart(payload), nil
}

func (c *Client) RemoveCartItem(ctx context.Context, productID string) (domain.CartSnapshot, error) {
	if !domain.ValidProductID(productID) {
		return domain.EmptySnapshot(), ErrInvalidProductID
	}

	var payload cartPayload
	if err := c.do(ctx, http.MethodDelete, "/cart/item/"+productID, nil, true, &payload); err != nil {
		return domain.EmptySnapshot(), err
	}
	return c.mapCart(payload), nil
}

// Checkout places the order for the current cart and returns the order id.
func (c *Client) Checkout(ctx context.Context) (string, error) {
	var payload struct {
		OrderID string `json:"orderId"`
	}
	if err := c.do(ctx, http.MethodPost, "/orders/checkout", nil, true, &payload); err != nil {
		return "", err
	}
	return payload.OrderID, nil
}

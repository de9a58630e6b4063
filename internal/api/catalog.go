package api

import (
	"context"
	"net/http"

	"github.com/baderboshnak/golden-shen/internal/domain"
)

func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, false, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, false, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) MyOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, true, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

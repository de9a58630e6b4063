package api

import (
	"context"
	"net/http"

	"github.com/baderboshnak/golden-shen/internal/domain"
)

// Admin surface. Role enforcement is server-side; these calls only require
// a session locally.

func (c *Client) AllOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.do(ctx, http.MethodGet, "/orders/all", nil, true, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	body := map[string]string{"status": status}
	return c.do(ctx, http.MethodPut, "/orders/"+orderID, body, true, nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, true, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+userID, nil, true, nil)
}

func (c *Client) SetUserRole(ctx context.Context, userID, role string) error {
	body := map[string]string{"role": role}
	return c.do(ctx, http.MethodPut, "/users/"+userID+"/role", body, true, nil)
}

func (c *Client) SetUserActive(ctx context.Context, userID string, active bool) error {
	body := map[string]bool{"isActive": active}
	return c.do(ctx, http.MethodPut, "/users/"+userID+"/active", body, true, nil)
}

// SetUserPassword resets another user's password; the backend re-verifies
// the acting admin's own password.
func (c *Client) SetUserPassword(ctx context.Context, userID, adminPassword, newPassword string) error {
	body := map[string]string{
		"adminPassword": adminPassword,
		"newPassword":   newPassword,
	}
	return c.do(ctx, http.MethodPut, "/users/"+userID+"/password", body, true, nil)
}

func (c *Client) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	var created domain.Product
	if err := c.do(ctx, http.MethodPost, "/products", p, true, &created); err != nil {
		return domain.Product{}, err
	}
	return created, nil
}

func (c *Client) UpdateProduct(ctx context.Context, p domain.Product) error {
	return c.do(ctx, http.MethodPut, "/products/"+p.ID, p, true, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+productID, nil, true, nil)
}

func (c *Client) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	body := map[string]string{"name": name}
	var created domain.Category
	if err := c.do(ctx, http.MethodPost, "/categories", body, true, &created); err != nil {
		return domain.Category{}, err
	}
	return created, nil
}

func (c *Client) DeleteCategory(ctx context.Context, categoryID string) error {
	return c.do(ctx, http.MethodDelete, "/categories/"+categoryID, nil, true, nil)
}

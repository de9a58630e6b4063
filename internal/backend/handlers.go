package backend

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/baderboshnak/golden-shen/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
)

type ctxKey int

const userKey ctxKey = 0

type errorResponse struct {
	Error string `json:"error"`
}

// cart wire shape: {items: [{product: {_id, name, price, imageFile}, quantity}]}
type cartItemDTO struct {
	Product  productDTO `json:"product"`
	Quantity int        `json:"quantity"`
}

type productDTO struct {
	ID        string          `json:"_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageFile string          `json:"imageFile"`
}

type cartDTO struct {
	Items []cartItemDTO `json:"items"`
}

func toCartDTO(lines []CartLine) cartDTO {
	items := make([]cartItemDTO, 0, len(lines))
	for _, l := range lines {
		items = append(items, cartItemDTO{
			Product: productDTO{
				ID:        l.Product.ID,
				Name:      l.Product.Name,
				Price:     l.Product.Price,
				ImageFile: l.Product.ImageFile,
			},
			Quantity: l.Quantity,
		})
	}
	return cartDTO{Items: items}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// NewRouter wires the full REST surface over the store.
func NewRouter(store *Store) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	h := &handler{store: store}

	r.Post("/auth/login", h.login)
	r.Get("/products", h.listProducts)
	r.Get("/categories", h.listCategories)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Get("/auth/me", h.me)
		r.Put("/auth/me/password", h.changeMyPassword)

		r.Get("/cart", h.getCart)
		r.Post("/cart/add", h.addToCart)
		r.Put("/cart/item/{productID}", h.updateCartItem)
		r.Delete("/cart/item/{productID}", h.removeCartItem)

		r.Post("/orders/checkout", h.checkout)
		r.Get("/orders", h.myOrders)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAdmin)

			r.Get("/orders/all", h.allOrders)
			r.Put("/orders/{orderID}", h.updateOrderStatus)

			r.Post("/products", h.createProduct)
			r.Put("/products/{productID}", h.updateProduct)
			r.Delete("/products/{productID}", h.deleteProduct)

			r.Post("/categories", h.createCategory)
			r.Delete("/categories/{categoryID}", h.deleteCategory)

			r.Get("/users", h.listUsers)
			r.Delete("/users/{userID}", h.deleteUser)
			r.Put("/users/{userID}/role", h.setUserRole)
			r.Put("/users/{userID}/active", h.setUserActive)
			r.Put("/users/{userID}/password", h.setUserPassword)
		})
	})

	return r
}

type handler struct {
	store *Store
}

func (h *handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		user, ok := h.store.UserByToken(token)
		if !ok {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

func (h *handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !userFrom(r).IsAdmin() {
			respondError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	token, user, err := h.store.Authenticate(req.Username, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, userFrom(r))
}

func (h *handler) changeMyPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.NewPassword) < 6 {
		respondError(w, http.StatusBadRequest, "new password too short")
		return
	}

	err := h.store.ChangePassword(userFrom(r).ID, req.CurrentPassword, req.NewPassword)
	if errors.Is(err, ErrInvalidCredentials) {
		respondError(w, http.StatusUnauthorized, "current password is wrong")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handler) getCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, toCartDTO(h.store.Cart(userFrom(r).ID)))
}

func (h *handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !domain.ValidProductID(req.ProductID) {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	lines, err := h.store.AddToCart(userFrom(r).ID, req.ProductID, req.Quantity)
	if errors.Is(err, ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, toCartDTO(lines))
}

func (h *handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	lines, err := h.store.UpdateCartItem(userFrom(r).ID, productID, req.Quantity)
	if errors.Is(err, ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "item not in cart")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, toCartDTO(lines))
}

func (h *handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	lines := h.store.RemoveCartItem(userFrom(r).ID, productID)
	respondJSON(w, http.StatusOK, toCartDTO(lines))
}

func (h *handler) checkout(w http.ResponseWriter, r *http.Request) {
	order, err := h.store.Checkout(userFrom(r).ID)
	if errors.Is(err, ErrEmptyCart) {
		respondError(w, http.StatusBadRequest, "cart is empty")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"orderId": order.ID})
}

func (h *handler) myOrders(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.OrdersFor(userFrom(r).ID))
}

func (h *handler) allOrders(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.AllOrders())
}

func (h *handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.store.SetOrderStatus(chi.URLParam(r, "orderID"), req.Status); err != nil {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Products())
}

func (h *handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var p domain.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if p.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	respondJSON(w, http.StatusCreated, h.store.CreateProduct(p))
}

func (h *handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var p domain.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p.ID = chi.URLParam(r, "productID")
	if err := h.store.UpdateProduct(p); err != nil {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteProduct(chi.URLParam(r, "productID")); err != nil {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handler) listCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Categories())
}

func (h *handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	respondJSON(w, http.StatusCreated, h.store.CreateCategory(req.Name))
}

func (h *handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCategory(chi.URLParam(r, "categoryID")); err != nil {
		respondError(w, http.StatusNotFound, "category not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Users())
}

func (h *handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteUser(chi.URLParam(r, "userID")); err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handler) setUserRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Role != domain.RoleAdmin && req.Role != domain.RoleUser {
		respondError(w, http.StatusBadRequest, "unknown role")
		return
	}
	if err := h.store.SetUserRole(chi.URLParam(r, "userID"), req.Role); err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handler) setUserActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsActive bool `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.store.SetUserActive(chi.URLParam(r, "userID"), req.IsActive); err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handler) setUserPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdminPassword string `json:"adminPassword"`
		NewPassword   string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !h.store.VerifyPassword(userFrom(r).ID, req.AdminPassword) {
		respondError(w, http.StatusUnauthorized, "admin password is wrong")
		return
	}
	if len(req.NewPassword) < 6 {
		respondError(w, http.StatusBadRequest, "new password too short")
		return
	}
	if err := h.store.SetPassword(chi.URLParam(r, "userID"), req.NewPassword); err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

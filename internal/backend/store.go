// Package backend is an in-memory implementation of the storefront REST
// interface, used by the dev server and end-to-end tests. It is not a
// production backend.
package backend

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/baderboshnak/golden-shen/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("account is deactivated")
	ErrUserNotFound       = errors.New("user not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrEmptyCart          = errors.New("cart is empty")
)

type userRecord struct {
	domain.User
	passwordHash []byte
}

type cartEntry struct {
	productID string
	quantity  int
}

type Store struct {
	mu sync.RWMutex

	users     map[string]*userRecord
	usersByID []string

	products     map[string]domain.Product
	productsByID []string

	categories     map[string]domain.Category
	categoriesByID []string

	carts  map[string][]cartEntry
	orders map[string]domain.Order
	// all order ids, oldest first; orders outlive their user
	orderIDs []string
	// order ids per user, oldest first
	ordersByUser map[string][]string

	tokens map[string]string
}

func NewStore() *Store {
	return &Store{
		users:        map[string]*userRecord{},
		products:     map[string]domain.Product{},
		categories:   map[string]domain.Category{},
		carts:        map[string][]cartEntry{},
		orders:       map[string]domain.Order{},
		ordersByUser: map[string][]string{},
		tokens:       map[string]string{},
	}
}

// newObjectID produces a 24-hex identifier in the backend's id format.
func newObjectID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// Authenticate verifies credentials and issues a bearer token.
func (s *Store) Authenticate(username, password string) (string, domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec *userRecord
	for _, id := range s.usersByID {
		if s.users[id].Username == username {
			rec = s.users[id]
			break
		}
	}
	if rec == nil {
		return "", domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(password)); err != nil {
		return "", domain.User{}, ErrInvalidCredentials
	}
	if !rec.IsActive {
		return "", domain.User{}, ErrUserInactive
	}

	token := uuid.NewString()
	s.tokens[token] = rec.ID
	return token, rec.User, nil
}

// UserByToken resolves a bearer token to its user.
func (s *Store) UserByToken(token string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.tokens[token]
	if !ok {
		return domain.User{}, false
	}
	rec, ok := s.users[id]
	if !ok {
		return domain.User{}, false
	}
	return rec.User, true
}

func (s *Store) CreateUser(username, password, role string) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := domain.User{
		ID:        newObjectID(),
		Username:  username,
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	s.users[u.ID] = &userRecord{User: u, passwordHash: hash}
	s.usersByID = append(s.usersByID, u.ID)
	return u, nil
}

func (s *Store) Users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.usersByID))
	for _, id := range s.usersByID {
		out = append(out, s.users[id].User)
	}
	return out
}

func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(s.users, id)
	for i, uid := range s.usersByID {
		if uid == id {
			s.usersByID = append(s.usersByID[:i], s.usersByID[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) SetUserRole(id, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	rec.Role = role
	return nil
}

func (s *Store) SetUserActive(id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	rec.IsActive = active
	return nil
}

// ChangePassword verifies the current password before replacing it.
func (s *Store) ChangePassword(id, currentPassword, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	rec.passwordHash = hash
	return nil
}

// SetPassword replaces a user's password without verifying the old one;
// the handler verifies the acting admin's password first.
func (s *Store) SetPassword(id, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	rec.passwordHash = hash
	return nil
}

// VerifyPassword checks a user's password without issuing a token.
func (s *Store) VerifyPassword(id, password string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[id]
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(password)) == nil
}

package backend

import "github.com/baderboshnak/golden-shen/internal/domain"

func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, 0, len(s.productsByID))
	for _, id := range s.productsByID {
		out = append(out, s.products[id])
	}
	return out
}

func (s *Store) Product(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok
}

func (s *Store) CreateProduct(p domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = newObjectID()
	s.products[p.ID] = p
	s.productsByID = append(s.productsByID, p.ID)
	return p
}

func (s *Store) UpdateProduct(p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return ErrProductNotFound
	}
	s.products[p.ID] = p
	return nil
}

func (s *Store) DeleteProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(s.products, id)
	for i, pid := range s.productsByID {
		if pid == id {
			s.productsByID = append(s.productsByID[:i], s.productsByID[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, 0, len(s.categoriesByID))
	for _, id := range s.categoriesByID {
		out = append(out, s.categories[id])
	}
	return out
}

func (s *Store) CreateCategory(name string) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := domain.Category{ID: newObjectID(), Name: name}
	s.categories[c.ID] = c
	s.categoriesByID = append(s.categoriesByID, c.ID)
	return c
}

func (s *Store) DeleteCategory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return ErrCategoryNotFound
	}
	delete(s.categories, id)
	for i, cid := range s.categoriesByID {
		if cid == id {
			s.categoriesByID = append(s.categoriesByID[:i], s.categoriesByID[i+1:]...)
			break
		}
	}
	return nil
}

// Package storetest provides in-memory store implementations for handler
// tests. They mirror the persistence semantics the real stores get from
// their backing services: unique user emails, the unique (buyer, property)
// interest pair, and newest-first ordering.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"konkan-properties/internal/models"
	"konkan-properties/internal/store"
)

// Users is an in-memory user store.
type Users struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func NewUsers() *Users {
	return &Users{users: map[string]*models.User{}}
}

func (s *Users) CreateUser(_ context.Context, name, email, hashedPassword, phone, address string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return nil, store.ErrDuplicate
		}
	}
	u := &models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Password:  hashedPassword,
		Phone:     phone,
		Address:   address,
		CreatedAt: time.Now(),
	}
	s.users[u.ID] = u
	return copyUser(u), nil
}

func (s *Users) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Users) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyUser(u), nil
}

func (s *Users) GetUsersByID(_ context.Context, ids []string) (map[string]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = copyUser(u)
		}
	}
	return out, nil
}

func (s *Users) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (s *Users) SetAdmin(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u.IsAdmin = true
	return copyUser(u), nil
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

// Properties is an in-memory listing store. Set InsertErr to make Insert
// fail, for exercising handler error paths.
type Properties struct {
	mu        sync.Mutex
	props     map[string]*models.Property
	InsertErr error
}

func NewProperties() *Properties {
	return &Properties{props: map[string]*models.Property{}}
}

func (s *Properties) Insert(_ context.Context, p *models.Property) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.InsertErr != nil {
		return nil, s.InsertErr
	}
	p.ID = primitive.NewObjectID()
	p.PostedAt = time.Now()
	c := *p
	s.props[p.ID.Hex()] = &c
	return p, nil
}

func (s *Properties) GetByID(_ context.Context, id string) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.props[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (s *Properties) ListByStatus(_ context.Context, status models.PropertyStatus, sortField string) ([]models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Property
	for _, p := range s.props {
		if p.Status == status {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if sortField == "sold_at" && out[i].SoldAt != nil && out[j].SoldAt != nil {
			return out[i].SoldAt.After(*out[j].SoldAt)
		}
		return out[i].PostedAt.After(out[j].PostedAt)
	})
	return out, nil
}

func (s *Properties) ListBySeller(_ context.Context, sellerID string) ([]models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Property
	for _, p := range s.props {
		if p.SellerID == sellerID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PostedAt.After(out[j].PostedAt) })
	return out, nil
}

func (s *Properties) GetByIDs(_ context.Context, ids []primitive.ObjectID) (map[string]*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*models.Property, len(ids))
	for _, id := range ids {
		if p, ok := s.props[id.Hex()]; ok {
			c := *p
			out[id.Hex()] = &c
		}
	}
	return out, nil
}

func (s *Properties) SetStatus(_ context.Context, id string, status models.PropertyStatus) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.props[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.Status = status
	now := time.Now()
	switch status {
	case models.StatusApproved:
		p.ApprovedAt = &now
	case models.StatusSold:
		p.SoldAt = &now
	}
	c := *p
	return &c, nil
}

func (s *Properties) IncrementInterest(_ context.Context, id primitive.ObjectID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.props[id.Hex()]
	if !ok {
		return store.ErrNotFound
	}
	p.InterestCount += delta
	return nil
}

// Interests is an in-memory enquiry store enforcing the unique
// (buyer, property) pair.
type Interests struct {
	mu        sync.Mutex
	interests map[string]*models.Interest
}

func NewInterests() *Interests {
	return &Interests{interests: map[string]*models.Interest{}}
}

func (s *Interests) Insert(_ context.Context, i *models.Interest) (*models.Interest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.interests {
		if existing.BuyerID == i.BuyerID && existing.PropertyID == i.PropertyID {
			return nil, store.ErrDuplicate
		}
	}
	i.ID = primitive.NewObjectID()
	i.CreatedAt = time.Now()
	if i.Status == "" {
		i.Status = models.InterestPending
	}
	c := *i
	s.interests[i.ID.Hex()] = &c
	return i, nil
}

func (s *Interests) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.interests, id.Hex())
	return nil
}

func (s *Interests) ListByBuyer(_ context.Context, buyerID string) ([]models.Interest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Interest
	for _, i := range s.interests {
		if i.BuyerID == buyerID {
			out = append(out, *i)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Interests) ListAll(_ context.Context) ([]models.Interest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Interest, 0, len(s.interests))
	for _, i := range s.interests {
		out = append(out, *i)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Interests) UpdateStatus(_ context.Context, id string, status models.InterestStatus) (*models.Interest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.interests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	i.Status = status
	c := *i
	return &c, nil
}

// Images is an in-memory image store.
type Images struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func NewImages() *Images {
	return &Images{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *Images) Upload(_ context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	s.types[key] = contentType
	return nil
}

func (s *Images) Download(_ context.Context, key string) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, "", store.ErrNotFound
	}
	return data, s.types[key], nil
}

func (s *Images) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	delete(s.types, key)
	return nil
}

// Keys lists the stored object keys.
func (s *Images) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}


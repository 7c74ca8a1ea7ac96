package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/example/storefront/internal/infrastructure/store"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
)

type Service struct {
	store store.DocumentStore
}

func NewService(ds store.DocumentStore) *Service {
	return &Service{store: ds}
}

type CreateInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	SalePrice   float64 `json:"sale_price"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"image_url"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Product, error) {
	if in.Name == "" || in.Price <= 0 || in.Stock < 0 {
		return nil, ErrInvalidProduct
	}
	if in.SalePrice <= 0 {
		in.SalePrice = in.Price
	}

	now := time.Now()
	p := &Product{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		SalePrice:   in.SalePrice,
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Put(ctx, store.CollectionProducts, p.ID, p); err != nil {
		return nil, err
	}
	return p, nil
}

type UpdateInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	SalePrice   float64 `json:"sale_price"`
	ImageURL    string  `json:"image_url"`
}

// Update changes product attributes. Stock is deliberately not updatable
// here; stock changes go through the ledger so every change is audited.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Product, error) {
	if in.Name == "" || in.Price <= 0 {
		return nil, ErrInvalidProduct
	}
	if in.SalePrice <= 0 {
		in.SalePrice = in.Price
	}

	var p Product
	ok, err := s.store.Get(ctx, store.CollectionProducts, id, &p)
	if err != nil {
		return nil, err
	}
	if !ok || !p.Active {
		return nil, ErrProductNotFound
	}

	p.Name = in.Name
	p.Description = in.Description
	p.Category = in.Category
	p.Price = in.Price
	p.SalePrice = in.SalePrice
	p.ImageURL = in.ImageURL
	p.UpdatedAt = time.Now()

	if err := s.store.Put(ctx, store.CollectionProducts, p.ID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Deactivate soft-deletes a product. The document stays in place so
// movement history and orders keep resolving.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	var p Product
	ok, err := s.store.Get(ctx, store.CollectionProducts, id, &p)
	if err != nil {
		return err
	}
	if !ok || !p.Active {
		return ErrProductNotFound
	}

	p.Active = false
	p.UpdatedAt = time.Now()
	return s.store.Put(ctx, store.CollectionProducts, p.ID, &p)
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	var p Product
	ok, err := s.store.Get(ctx, store.CollectionProducts, id, &p)
	if err != nil {
		return nil, err
	}
	if !ok || !p.Active {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

// ListActive returns all active products.
func (s *Service) ListActive(ctx context.Context) ([]*Product, error) {
	raw, err := s.store.List(ctx, store.CollectionProducts)
	if err != nil {
		return nil, err
	}

	products := make([]*Product, 0, len(raw))
	for _, doc := range raw {
		var p Product
		if err := json.Unmarshal(doc, &p); err != nil {
			continue
		}
		if p.Active {
			products = append(products, &p)
		}
	}
	return products, nil
}

package cart

import (
	"context"
	"errors"
	"time"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/infrastructure/store"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

type Item struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Cart struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Items     []Item    `json:"items"`
	Total     float64   `json:"total"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartID derives the cart document id for a user. One cart per user.
func CartID(userID string) string {
	return "cart-" + userID
}

type Service struct {
	store store.DocumentStore
}

func NewService(ds store.DocumentStore) *Service {
	return &Service{store: ds}
}

// AddItem adds a product to the user's cart, merging quantities when the
// product is already present. Price is captured at add time.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var p catalog.Product
	ok, err := s.store.Get(ctx, store.CollectionProducts, productID, &p)
	if err != nil {
		return nil, err
	}
	if !ok || !p.Active {
		return nil, catalog.ErrProductNotFound
	}

	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, Item{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  quantity,
			Price:     p.SalePrice,
		})
	}

	return c, s.save(ctx, c)
}

// RemoveItem drops a product from the cart entirely.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (*Cart, error) {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(c.Items))
	for _, item := range c.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	c.Items = items

	return c, s.save(ctx, c)
}

// Get returns the user's cart, or an empty cart if none exists yet.
func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	id := CartID(userID)
	var c Cart
	ok, err := s.store.Get(ctx, store.CollectionCarts, id, &c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Cart{ID: id, UserID: userID, Items: []Item{}}, nil
	}
	return &c, nil
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.store.Delete(ctx, store.CollectionCarts, CartID(userID))
}

func (s *Service) save(ctx context.Context, c *Cart) error {
	total := 0.0
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	c.Total = total
	c.UpdatedAt = time.Now()
	return s.store.Put(ctx, store.CollectionCarts, c.ID, c)
}

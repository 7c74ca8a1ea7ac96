package stock

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/infrastructure/store"
)

// Report classifications, in sort priority order.
const (
	StatusOutOfStock = "out-of-stock"
	StatusLowStock   = "low-stock"
	StatusInStock    = "in-stock"
)

type ReportProduct struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category,omitempty"`
	Stock     int     `json:"stock"`
	Threshold int     `json:"threshold"`
	Status    string  `json:"status"`
	SalePrice float64 `json:"sale_price"`
	Value     float64 `json:"value"`
}

type ReportSummary struct {
	TotalProducts int     `json:"total_products"`
	OutOfStock    int     `json:"out_of_stock"`
	LowStock      int     `json:"low_stock"`
	InStock       int     `json:"in_stock"`
	TotalValue    float64 `json:"total_value"`
}

type Report struct {
	Summary     ReportSummary   `json:"summary"`
	Products    []ReportProduct `json:"products"`
	GeneratedAt time.Time       `json:"generated_at"`
}

var statusRank = map[string]int{
	StatusOutOfStock: 0,
	StatusLowStock:   1,
	StatusInStock:    2,
}

// BuildReport aggregates current stock status across all active products.
// Products sort by classification priority; order within a class follows
// the store's listing order.
func (l *Ledger) BuildReport(ctx context.Context) (*Report, error) {
	rawProducts, err := l.store.List(ctx, store.CollectionProducts)
	if err != nil {
		return nil, err
	}
	rawAlerts, err := l.store.List(ctx, store.CollectionAlerts)
	if err != nil {
		return nil, err
	}

	thresholds := make(map[string]int)
	for _, doc := range rawAlerts {
		var a Alert
		if err := json.Unmarshal(doc, &a); err != nil {
			continue
		}
		if a.Active && a.Threshold > 0 {
			thresholds[a.ProductID] = a.Threshold
		}
	}

	report := &Report{
		Products:    make([]ReportProduct, 0, len(rawProducts)),
		GeneratedAt: time.Now(),
	}
	totalValue := 0.0

	for _, doc := range rawProducts {
		var p catalog.Product
		if err := json.Unmarshal(doc, &p); err != nil {
			continue
		}
		if !p.Active {
			continue
		}

		threshold, ok := thresholds[p.ID]
		if !ok {
			threshold = DefaultAlertThreshold
		}

		status := StatusInStock
		switch {
		case p.Stock == 0:
			status = StatusOutOfStock
			report.Summary.OutOfStock++
		case p.Stock <= threshold:
			status = StatusLowStock
			report.Summary.LowStock++
		default:
			report.Summary.InStock++
		}

		value := round2(float64(p.Stock) * p.SalePrice)
		totalValue += value

		report.Products = append(report.Products, ReportProduct{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Stock:     p.Stock,
			Threshold: threshold,
			Status:    status,
			SalePrice: p.SalePrice,
			Value:     value,
		})
	}

	report.Summary.TotalProducts = len(report.Products)
	report.Summary.TotalValue = round2(totalValue)

	sort.SliceStable(report.Products, func(i, j int) bool {
		return statusRank[report.Products[i].Status] < statusRank[report.Products[j].Status]
	})

	return report, nil
}

// Movements returns the movement history for one product, newest first.
func (l *Ledger) Movements(ctx context.Context, productID string) ([]*Movement, error) {
	raw, err := l.store.List(ctx, store.CollectionMovements)
	if err != nil {
		return nil, err
	}

	movements := make([]*Movement, 0)
	for _, doc := range raw {
		var m Movement
		if err := json.Unmarshal(doc, &m); err != nil {
			continue
		}
		if m.ProductID == productID {
			movements = append(movements, &m)
		}
	}
	sort.SliceStable(movements, func(i, j int) bool {
		return movements[i].CreatedAt.After(movements[j].CreatedAt)
	})
	return movements, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

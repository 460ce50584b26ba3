// Package view implements the admin list view over the product store:
// search filtering, column sorting and the staged two-step delete.
package view

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/studentalliance/catalog-gateway/internal/apperr"
	"github.com/studentalliance/catalog-gateway/internal/config"
	"github.com/studentalliance/catalog-gateway/internal/model"
)

// Catalog is the slice of the product store the view reads from.
type Catalog interface {
	Products() []model.Product
	Loaded() bool
	Remove(ctx context.Context, id string, token string) error
}

const (
	SortByName     = "name"
	SortByPrice    = "price"
	SortByCategory = "category"
	SortByQuantity = "quantity"
	SortByStocks   = "stocks"
	SortByRating   = "rating"
	SortByDiscount = "discount"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Row is one rendered table line.
type Row struct {
	Product       model.Product `json:"product"`
	DisplayPrice  string        `json:"displayPrice"`
	PendingDelete bool          `json:"pendingDelete"`
}

type ListParams struct {
	Search string
	Sort   string
	Order  string
}

type ListResult struct {
	Loading bool   `json:"loading"`
	Empty   bool   `json:"empty"`
	Sort    string `json:"sort,omitempty"`
	Order   string `json:"order,omitempty"`
	Rows    []Row  `json:"rows"`
}

type Service struct {
	cfg     config.Store
	catalog Catalog

	mu        sync.Mutex
	staged    map[string]struct{}
	sortKey   string
	ascending bool
}

func New(cfg config.Store, catalog Catalog) *Service {
	return &Service{
		cfg:     cfg,
		catalog: catalog,
		staged:  make(map[string]struct{}),
	}
}

// List renders the table: filter first, then sort. Repeating the same sort
// key without an explicit order flips the direction, matching how clicking
// a column header twice behaves.
func (s *Service) List(params ListParams) ListResult {
	if !s.catalog.Loaded() {
		return ListResult{Loading: true, Rows: []Row{}}
	}

	products := Filter(s.catalog.Products(), params.Search)

	key, asc := s.resolveSort(params)
	Sort(products, key, asc)

	s.mu.Lock()
	rows := make([]Row, 0, len(products))
	for _, p := range products {
		_, pending := s.staged[p.ID]
		rows = append(rows, Row{
			Product:       p,
			DisplayPrice:  s.displayPrice(p.Price),
			PendingDelete: pending,
		})
	}
	s.mu.Unlock()

	result := ListResult{
		Empty: len(rows) == 0,
		Sort:  key,
		Rows:  rows,
	}
	if key != "" {
		result.Order = OrderAsc
		if !asc {
			result.Order = OrderDesc
		}
	}

	return result
}

// StageDelete marks a product for deletion without touching anything.
// Nothing is removed until the staged delete is confirmed.
func (s *Service) StageDelete(id string) error {
	if !s.exists(id) {
		return apperr.ProductNotFoundErr
	}

	s.mu.Lock()
	s.staged[id] = struct{}{}
	s.mu.Unlock()
	return nil
}

// ConfirmDelete executes a previously staged delete.
func (s *Service) ConfirmDelete(ctx context.Context, id string, token string) error {
	s.mu.Lock()
	_, staged := s.staged[id]
	s.mu.Unlock()
	if !staged {
		return apperr.NoDeleteStagedErr
	}

	if err := s.catalog.Remove(ctx, id, token); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.staged, id)
	s.mu.Unlock()
	return nil
}

// CancelDelete discards a staged delete, leaving the product untouched.
func (s *Service) CancelDelete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, staged := s.staged[id]; !staged {
		return apperr.NoDeleteStagedErr
	}

	delete(s.staged, id)
	return nil
}

func (s *Service) exists(id string) bool {
	for _, p := range s.catalog.Products() {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s *Service) resolveSort(params ListParams) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch params.Sort {
	case SortByName, SortByPrice, SortByCategory, SortByQuantity,
		SortByStocks, SortByRating, SortByDiscount:
	default:
		return s.sortKey, s.ascending
	}

	switch params.Order {
	case OrderAsc:
		s.ascending = true
	case OrderDesc:
		s.ascending = false
	default:
		if params.Sort == s.sortKey {
			s.ascending = !s.ascending
		} else {
			s.ascending = true
		}
	}

	s.sortKey = params.Sort
	return s.sortKey, s.ascending
}

func (s *Service) displayPrice(price float64) string {
	return fmt.Sprintf("%s%s", s.cfg.Currency, strconv.FormatFloat(price, 'f', -1, 64))
}

// Filter keeps the products whose name or category contains the query,
// case-insensitively. An empty query keeps everything.
func Filter(products []model.Product, query string) []model.Product {
	if query == "" {
		return products
	}

	q := strings.ToLower(query)
	matched := make([]model.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(string(p.Category)), q) {
			matched = append(matched, p)
		}
	}

	return matched
}

// Sort orders products in place by the given key. The sort is stable, so
// records comparing equal keep their relative order.
func Sort(products []model.Product, key string, ascending bool) {
	var less func(a, b model.Product) bool

	switch key {
	case SortByName:
		less = func(a, b model.Product) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	case SortByPrice:
		less = func(a, b model.Product) bool { return a.Price < b.Price }
	case SortByCategory:
		less = func(a, b model.Product) bool {
			return strings.ToLower(string(a.Category)) < strings.ToLower(string(b.Category))
		}
	case SortByQuantity:
		less = func(a, b model.Product) bool { return a.Quantity < b.Quantity }
	case SortByStocks:
		less = func(a, b model.Product) bool { return a.Stocks < b.Stocks }
	case SortByRating:
		less = func(a, b model.Product) bool { return a.Rating < b.Rating }
	case SortByDiscount:
		less = func(a, b model.Product) bool { return a.Discount < b.Discount }
	default:
		return
	}

	sort.SliceStable(products, func(i, j int) bool {
		if ascending {
			return less(products[i], products[j])
		}
		return less(products[j], products[i])
	})
}

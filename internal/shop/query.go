// Package shop builds the read-only storefront projections: search, sort
// and price filtering over the whole catalog. No pagination here, the
// storefront renders the full result set.
package shop

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fruitables/fruitables/internal/catalog"
	"github.com/fruitables/fruitables/internal/domain"
)

// ProductView is the storefront JSON projection.
type ProductView struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
}

// HomeView is the storefront landing payload.
type HomeView struct {
	Categories []domain.Category `json:"categories"`
	Products   []ProductView     `json:"products"`
}

// QueryService reads the catalog for the storefront. It never mutates
// state.
type QueryService struct {
	db *gorm.DB
}

func NewQueryService(db *gorm.DB) *QueryService {
	return &QueryService{db: db}
}

// Home returns all categories plus all products.
func (s *QueryService) Home(ctx context.Context) (*HomeView, error) {
	var categories []domain.Category
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	products, err := s.collect(s.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return &HomeView{Categories: categories, Products: products}, nil
}

// ProductDetail returns a single storefront product view.
func (s *QueryService) ProductDetail(ctx context.Context, id int64) (*ProductView, error) {
	if id <= 0 {
		return nil, &catalog.BadRequestError{Reason: "invalid product id"}
	}
	views, err := s.collect(s.db.WithContext(ctx).Where("products.id = ?", id))
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, &catalog.NotFoundError{Entity: "product", ID: id}
	}
	return &views[0], nil
}

// Search filters by name substring and category id. Both filters are
// optional and combine conjunctively; results come back in natural storage
// order.
func (s *QueryService) Search(ctx context.Context, searchText string, categoryID int64) ([]ProductView, error) {
	db := s.db.WithContext(ctx)
	if searchText != "" {
		if strings.EqualFold(db.Name(), "postgres") {
			db = db.Where("products.name ILIKE ?", "%"+searchText+"%")
		} else {
			db = db.Where("LOWER(products.name) LIKE ?", "%"+strings.ToLower(searchText)+"%")
		}
	}
	if categoryID > 0 {
		db = db.Where("products.category_id = ?", categoryID)
	}
	return s.collect(db)
}

// Sort orders the full catalog by one of the known keys. Unrecognized keys
// fall back to natural storage order rather than failing.
func (s *QueryService) Sort(ctx context.Context, key string) ([]ProductView, error) {
	db := s.db.WithContext(ctx)
	switch key {
	case "price_asc":
		db = db.Order("products.price ASC")
	case "price_desc":
		db = db.Order("products.price DESC")
	case "name_asc":
		db = db.Order("products.name ASC")
	case "name_desc":
		db = db.Order("products.name DESC")
	}
	return s.collect(db)
}

// FilterByPrice returns products priced at or below maxPrice. The input is
// parsed as an invariant decimal; malformed input yields a ParseError.
func (s *QueryService) FilterByPrice(ctx context.Context, maxPrice string) ([]ProductView, error) {
	limit, err := decimal.NewFromString(strings.TrimSpace(maxPrice))
	if err != nil {
		return nil, &catalog.ParseError{Input: maxPrice}
	}
	return s.collect(s.db.WithContext(ctx).Where("products.price <= ?", limit))
}

func (s *QueryService) collect(db *gorm.DB) ([]ProductView, error) {
	var rows []domain.Product
	if err := db.Preload("Category").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "query products")
	}
	views := make([]ProductView, 0, len(rows))
	for _, p := range rows {
		views = append(views, ProductView{
			ID:          p.ID,
			Name:        p.Name,
			Price:       p.Price,
			Description: p.Description,
			Image:       p.Image,
			Category:    p.Category.Name,
		})
	}
	return views, nil
}

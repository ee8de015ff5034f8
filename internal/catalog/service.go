// Package catalog implements the product, tag and category management
// services behind the admin API. All state is injected: a GORM handle for
// rows, an image store for uploads and an optional event bus for audit
// events.
package catalog

import (
	"context"
	"io"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fruitables/fruitables/internal/domain"
	"github.com/fruitables/fruitables/internal/imagestore"
)

// Event topics published on catalog mutations.
const (
	EventProduct  = "catalog.product"
	EventTag      = "catalog.tag"
	EventCategory = "catalog.category"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ImageUpload carries one uploaded file into the service. Size and
// ContentType are the client-declared values.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// ProductInput is the write schema for create and update operations. Price
// is a pointer so an omitted field is distinguishable from a free product.
type ProductInput struct {
	ID          int64
	Name        string
	Description string
	Price       *decimal.Decimal
	CategoryID  int64
	TagIDs      []int64
	Image       *ImageUpload
}

// ProductSummary is the admin listing projection.
type ProductSummary struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Category string          `json:"category"`
}

// ProductPage is one page of summaries plus paging metadata.
type ProductPage struct {
	Items     []ProductSummary `json:"items"`
	Page      int              `json:"page"`
	PageSize  int              `json:"page_size"`
	Total     int64            `json:"total"`
	PageCount int              `json:"page_count"`
}

// ProductDetail is the full projection including category and tag names.
type ProductDetail struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	CategoryID  int64           `json:"category_id"`
	Category    string          `json:"category"`
	TagIDs      []int64         `json:"tag_ids"`
	Tags        []string        `json:"tags"`
}

// Service executes catalog mutations and admin listings.
type Service struct {
	db     *gorm.DB
	images *imagestore.Store
	bus    EventBus.Bus
}

// NewService builds a catalog service over the given storage handles.
func NewService(db *gorm.DB, images *imagestore.Store, bus EventBus.Bus) *Service {
	return &Service{db: db, images: images, bus: bus}
}

func (s *Service) publish(topic, action string, id int64, detail string) {
	if s.bus != nil {
		s.bus.Publish(topic, action, id, detail)
	}
}

// List returns one page of product summaries. page is clamped to >= 1 and
// pageSize to 1..100 (default 20).
func (s *Service) List(ctx context.Context, page, pageSize int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&domain.Product{}).Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "count products")
	}

	var rows []domain.Product
	err := s.db.WithContext(ctx).
		Preload("Category").
		Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	items := make([]ProductSummary, 0, len(rows))
	for _, p := range rows {
		items = append(items, ProductSummary{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Image:    p.Image,
			Category: p.Category.Name,
		})
	}

	pageCount := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &ProductPage{
		Items:     items,
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		PageCount: pageCount,
	}, nil
}

// Create validates the input, stores the image and creates the product with
// its tag associations in one transaction. The file write happens first; a
// failed transaction removes the stored file again so no orphan is left
// behind.
func (s *Service) Create(ctx context.Context, in *ProductInput) (*ProductDetail, error) {
	if err := ValidateProductInput(in, true); err != nil {
		return nil, err
	}
	if err := s.checkCategoryExists(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	tagIDs := dedupeIDs(in.TagIDs)
	if err := s.checkTagsExist(ctx, tagIDs); err != nil {
		return nil, err
	}
	if err := CheckImage(in.Image); err != nil {
		return nil, err
	}

	filename, err := s.images.Save(in.Image.Reader, in.Image.Filename)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	product := domain.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		Image:       filename,
		CategoryID:  in.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Category", "ProductTags").Create(&product).Error; err != nil {
			return err
		}
		return insertProductTags(tx, product.ID, tagIDs)
	})
	if err != nil {
		// compensate the file write, the row never made it
		_ = s.images.Remove(filename)
		return nil, errors.Wrap(err, "create product")
	}

	s.publish(EventProduct, "created", product.ID, product.Name)
	return s.Detail(ctx, product.ID)
}

// Detail returns the full product projection.
func (s *Service) Detail(ctx context.Context, id int64) (*ProductDetail, error) {
	var p domain.Product
	err := s.db.WithContext(ctx).
		Preload("Category").
		First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "product", ID: id}
	} else if err != nil {
		return nil, errors.Wrap(err, "query product")
	}

	// one ordered query keeps ids and names index-aligned
	var tagRows []domain.Tag
	err = s.db.WithContext(ctx).
		Model(&domain.Tag{}).
		Joins("JOIN product_tags ON product_tags.tag_id = tags.id").
		Where("product_tags.product_id = ?", p.ID).
		Order("tags.id ASC").
		Find(&tagRows).Error
	if err != nil {
		return nil, errors.Wrap(err, "query product tags")
	}

	tagIDs := make([]int64, 0, len(tagRows))
	tagNames := make([]string, 0, len(tagRows))
	for _, tag := range tagRows {
		tagIDs = append(tagIDs, tag.ID)
		tagNames = append(tagNames, tag.Name)
	}

	return &ProductDetail{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		CategoryID:  p.CategoryID,
		Category:    p.Category.Name,
		TagIDs:      tagIDs,
		Tags:        tagNames,
	}, nil
}

// Update applies field changes, replaces the tag set and optionally swaps
// the image. A submitted image passes the same checks as on create; the new
// file is written before the transaction and the old file is removed
// best-effort after a successful commit.
func (s *Service) Update(ctx context.Context, id int64, in *ProductInput) (*ProductDetail, error) {
	if in.ID != id {
		return nil, &BadRequestError{Reason: "path and payload product ids disagree"}
	}

	var p domain.Product
	err := s.db.WithContext(ctx).Preload("ProductTags").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "product", ID: id}
	} else if err != nil {
		return nil, errors.Wrap(err, "query product")
	}

	if err := ValidateProductInput(in, false); err != nil {
		return nil, err
	}
	if err := s.checkCategoryExists(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	tagIDs := dedupeIDs(in.TagIDs)
	if err := s.checkTagsExist(ctx, tagIDs); err != nil {
		return nil, err
	}

	oldImage := p.Image
	newImage := ""
	if in.Image != nil {
		if err := CheckImage(in.Image); err != nil {
			return nil, err
		}
		newImage, err = s.images.Save(in.Image.Reader, in.Image.Filename)
		if err != nil {
			return nil, err
		}
	}

	p.Name = in.Name
	p.Description = in.Description
	p.Price = *in.Price
	p.CategoryID = in.CategoryID
	if newImage != "" {
		p.Image = newImage
	}
	p.UpdatedAt = time.Now()

	current := make([]int64, 0, len(p.ProductTags))
	for _, pt := range p.ProductTags {
		current = append(current, pt.TagID)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("ProductTags", "Category").Save(&p).Error; err != nil {
			return err
		}
		return replaceProductTags(tx, p.ID, current, tagIDs)
	})
	if err != nil {
		if newImage != "" {
			_ = s.images.Remove(newImage)
		}
		return nil, errors.Wrap(err, "update product")
	}

	if newImage != "" && oldImage != "" {
		// best-effort, the row already points at the new file
		_ = s.images.Remove(oldImage)
	}

	s.publish(EventProduct, "updated", p.ID, p.Name)
	return s.Detail(ctx, p.ID)
}

// Delete removes the product and its tag associations, then removes the
// image file best-effort.
func (s *Service) Delete(ctx context.Context, id int64) error {
	var p domain.Product
	err := s.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: "product", ID: id}
	} else if err != nil {
		return errors.Wrap(err, "query product")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&domain.ProductTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Product{}, id).Error
	})
	if err != nil {
		return errors.Wrap(err, "delete product")
	}

	if p.Image != "" {
		_ = s.images.Remove(p.Image)
	}

	s.publish(EventProduct, "deleted", id, p.Name)
	return nil
}

func (s *Service) checkCategoryExists(ctx context.Context, id int64) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return errors.Wrap(err, "query category")
	}
	if count == 0 {
		return &NotFoundError{Entity: "category", ID: id}
	}
	return nil
}

func (s *Service) checkTagsExist(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.Tag{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return errors.Wrap(err, "query tags")
	}
	if count != int64(len(ids)) {
		return &NotFoundError{Entity: "tag"}
	}
	return nil
}

func insertProductTags(tx *gorm.DB, productID int64, tagIDs []int64) error {
	for _, tagID := range tagIDs {
		if err := tx.Create(&domain.ProductTag{ProductID: productID, TagID: tagID}).Error; err != nil {
			return err
		}
	}
	return nil
}

// replaceProductTags diffs the current set against the desired one instead
// of clearing and reinserting everything.
func replaceProductTags(tx *gorm.DB, productID int64, current, desired []int64) error {
	want := make(map[int64]struct{}, len(desired))
	for _, id := range desired {
		want[id] = struct{}{}
	}
	have := make(map[int64]struct{}, len(current))
	for _, id := range current {
		have[id] = struct{}{}
	}

	var remove []int64
	for _, id := range current {
		if _, ok := want[id]; !ok {
			remove = append(remove, id)
		}
	}
	if len(remove) > 0 {
		err := tx.Where("product_id = ? AND tag_id IN ?", productID, remove).
			Delete(&domain.ProductTag{}).Error
		if err != nil {
			return err
		}
	}

	for _, id := range desired {
		if _, ok := have[id]; ok {
			continue
		}
		if err := tx.Create(&domain.ProductTag{ProductID: productID, TagID: id}).Error; err != nil {
			return err
		}
	}
	return nil
}

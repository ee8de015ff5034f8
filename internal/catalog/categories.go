package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/fruitables/fruitables/internal/domain"
)

// CategoryService manages the category reference entities. Deleting a
// category that products still point at is refused, keeping the product
// foreign key valid.
type CategoryService struct {
	db  *gorm.DB
	bus EventBus.Bus
}

func NewCategoryService(db *gorm.DB, bus EventBus.Bus) *CategoryService {
	return &CategoryService{db: db, bus: bus}
}

func (s *CategoryService) publish(action string, id int64, detail string) {
	if s.bus != nil {
		s.bus.Publish(EventCategory, action, id, detail)
	}
}

// List returns all categories in id order.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	err := s.db.WithContext(ctx).Order("id ASC").Find(&categories).Error
	return categories, errors.Wrap(err, "list categories")
}

// Detail returns one category by id.
func (s *CategoryService) Detail(ctx context.Context, id int64) (*domain.Category, error) {
	var category domain.Category
	err := s.db.WithContext(ctx).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "category", ID: id}
	} else if err != nil {
		return nil, errors.Wrap(err, "query category")
	}
	return &category, nil
}

// Create inserts a new category with the same normalized-name uniqueness
// rule as tags.
func (s *CategoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Fields: map[string]string{"name": "Name is required"}}
	}

	taken, err := s.nameTaken(ctx, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &DuplicateNameError{Name: name}
	}

	category := domain.Category{Name: name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, errors.Wrap(err, "create category")
	}

	s.publish("created", category.ID, category.Name)
	return &category, nil
}

// Update renames a category.
func (s *CategoryService) Update(ctx context.Context, id, payloadID int64, name string) (*domain.Category, error) {
	if payloadID != id {
		return nil, &BadRequestError{Reason: "path and payload category ids disagree"}
	}

	var category domain.Category
	err := s.db.WithContext(ctx).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "category", ID: id}
	} else if err != nil {
		return nil, errors.Wrap(err, "query category")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Fields: map[string]string{"name": "Name is required"}}
	}

	taken, err := s.nameTaken(ctx, name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &DuplicateNameError{Name: name}
	}

	category.Name = name
	category.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(&category).Error; err != nil {
		return nil, errors.Wrap(err, "update category")
	}

	s.publish("updated", category.ID, category.Name)
	return &category, nil
}

// Delete removes a category unless products still reference it.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	var category domain.Category
	err := s.db.WithContext(ctx).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: "category", ID: id}
	} else if err != nil {
		return errors.Wrap(err, "query category")
	}

	var refs int64
	if err := s.db.WithContext(ctx).Model(&domain.Product{}).Where("category_id = ?", id).Count(&refs).Error; err != nil {
		return errors.Wrap(err, "count category references")
	}
	if refs > 0 {
		return &ConflictError{Reason: "category is still referenced by products"}
	}

	if err := s.db.WithContext(ctx).Delete(&domain.Category{}, id).Error; err != nil {
		return errors.Wrap(err, "delete category")
	}

	s.publish("deleted", id, category.Name)
	return nil
}

func (s *CategoryService) nameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	db := s.db.WithContext(ctx).Model(&domain.Category{}).
		Where("LOWER(TRIM(name)) = ?", NormalizeName(name))
	if excludeID > 0 {
		db = db.Where("id <> ?", excludeID)
	}
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "query category names")
	}
	return count > 0, nil
}

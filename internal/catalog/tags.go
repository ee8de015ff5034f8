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

// TagService manages the tag reference entities. Tag names are unique after
// trimming and case folding; deleting a tag still attached to products is
// refused.
type TagService struct {
	db  *gorm.DB
	bus EventBus.Bus
}

func NewTagService(db *gorm.DB, bus EventBus.Bus) *TagService {
	return &TagService{db: db, bus: bus}
}

func (s *TagService) publish(action string, id int64, detail string) {
	if s.bus != nil {
		s.bus.Publish(EventTag, action, id, detail)
	}
}

// List returns all tags in id order.
func (s *TagService) List(ctx context.Context) ([]domain.Tag, error) {
	var tags []domain.Tag
	err := s.db.WithContext(ctx).Order("id ASC").Find(&tags).Error
	return tags, errors.Wrap(err, "list tags")
}

// Detail returns one tag by id.
func (s *TagService) Detail(ctx context.Context, id int64) (*domain.Tag, error) {
	var tag domain.Tag
	err := s.db.WithContext(ctx).First(&tag, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "tag", ID: id}
	} else if err != nil {
		return nil, errors.Wrap(err, "query tag")
	}
	return &tag, nil
}

// Create inserts a new tag unless another tag already has the same
// normalized name.
func (s *TagService) Create(ctx context.Context, name string) (*domain.Tag, error) {
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

	tag := domain.Tag{Name: name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		return nil, errors.Wrap(err, "create tag")
	}

	s.publish("created", tag.ID, tag.Name)
	return &tag, nil
}

// Update renames a tag, keeping the normalized-name uniqueness invariant.
func (s *TagService) Update(ctx context.Context, id, payloadID int64, name string) (*domain.Tag, error) {
	if payloadID != id {
		return nil, &BadRequestError{Reason: "path and payload tag ids disagree"}
	}

	var tag domain.Tag
	err := s.db.WithContext(ctx).First(&tag, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "tag", ID: id}
	} else if err != nil {
		return nil, errors.Wrap(err, "query tag")
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

	tag.Name = name
	tag.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(&tag).Error; err != nil {
		return nil, errors.Wrap(err, "update tag")
	}

	s.publish("updated", tag.ID, tag.Name)
	return &tag, nil
}

// Delete removes a tag. Tags still referenced by products are kept and the
// call fails with a ConflictError.
func (s *TagService) Delete(ctx context.Context, id int64) error {
	var tag domain.Tag
	err := s.db.WithContext(ctx).First(&tag, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: "tag", ID: id}
	} else if err != nil {
		return errors.Wrap(err, "query tag")
	}

	var refs int64
	if err := s.db.WithContext(ctx).Model(&domain.ProductTag{}).Where("tag_id = ?", id).Count(&refs).Error; err != nil {
		return errors.Wrap(err, "count tag references")
	}
	if refs > 0 {
		return &ConflictError{Reason: "tag is still attached to products"}
	}

	if err := s.db.WithContext(ctx).Delete(&domain.Tag{}, id).Error; err != nil {
		return errors.Wrap(err, "delete tag")
	}

	s.publish("deleted", id, tag.Name)
	return nil
}

func (s *TagService) nameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	db := s.db.WithContext(ctx).Model(&domain.Tag{}).
		Where("LOWER(TRIM(name)) = ?", NormalizeName(name))
	if excludeID > 0 {
		db = db.Where("id <> ?", excludeID)
	}
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "query tag names")
	}
	return count > 0, nil
}

package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fruitables/fruitables/internal/domain"
)

func TestTagCreateTrimsName(t *testing.T) {
	db := newTestDB(t)
	svc := NewTagService(db, nil)

	tag, err := svc.Create(context.Background(), "  fresh  ")
	require.NoError(t, err)
	assert.Equal(t, "fresh", tag.Name)
}

func TestTagCreateDuplicateName(t *testing.T) {
	db := newTestDB(t)
	svc := NewTagService(db, nil)

	_, err := svc.Create(context.Background(), "fresh")
	require.NoError(t, err)

	// normalized comparison: trimmed, case-insensitive
	_, err = svc.Create(context.Background(), " Fresh ")
	var dupErr *DuplicateNameError
	require.ErrorAs(t, err, &dupErr)
}

func TestTagCreateEmptyName(t *testing.T) {
	db := newTestDB(t)
	svc := NewTagService(db, nil)

	_, err := svc.Create(context.Background(), "   ")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "name")
}

func TestTagUpdate(t *testing.T) {
	db := newTestDB(t)
	svc := NewTagService(db, nil)

	tag, err := svc.Create(context.Background(), "fresh")
	require.NoError(t, err)
	other, err := svc.Create(context.Background(), "organic")
	require.NoError(t, err)

	// renaming onto another tag's name collides
	_, err = svc.Update(context.Background(), tag.ID, tag.ID, "ORGANIC ")
	var dupErr *DuplicateNameError
	require.ErrorAs(t, err, &dupErr)

	// renaming to a fresh name works, recasing itself works too
	renamed, err := svc.Update(context.Background(), tag.ID, tag.ID, "Fresh")
	require.NoError(t, err)
	assert.Equal(t, "Fresh", renamed.Name)

	// path and payload ids must agree
	_, err = svc.Update(context.Background(), tag.ID, other.ID, "whatever")
	var brErr *BadRequestError
	require.ErrorAs(t, err, &brErr)
}

func TestTagDeleteRestrictedWhileReferenced(t *testing.T) {
	db := newTestDB(t)
	svc := NewTagService(db, nil)

	tag, err := svc.Create(context.Background(), "fresh")
	require.NoError(t, err)

	catID := seedCategory(t, db, "Fruits")
	product := domain.Product{Name: "Green Apple", CategoryID: catID}
	require.NoError(t, db.Omit("Category", "ProductTags").Create(&product).Error)
	require.NoError(t, db.Create(&domain.ProductTag{ProductID: product.ID, TagID: tag.ID}).Error)

	err = svc.Delete(context.Background(), tag.ID)
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)

	require.NoError(t, db.Delete(&domain.ProductTag{ProductID: product.ID, TagID: tag.ID}).Error)
	require.NoError(t, svc.Delete(context.Background(), tag.ID))

	var nfErr *NotFoundError
	require.ErrorAs(t, svc.Delete(context.Background(), tag.ID), &nfErr)
}

func TestCategoryCreateDuplicateName(t *testing.T) {
	db := newTestDB(t)
	svc := NewCategoryService(db, nil)

	_, err := svc.Create(context.Background(), "Fruits")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), " fruits ")
	var dupErr *DuplicateNameError
	require.ErrorAs(t, err, &dupErr)
}

func TestCategoryDeleteRestrictedWhileReferenced(t *testing.T) {
	db := newTestDB(t)
	svc := NewCategoryService(db, nil)

	category, err := svc.Create(context.Background(), "Fruits")
	require.NoError(t, err)

	product := domain.Product{Name: "Green Apple", CategoryID: category.ID}
	require.NoError(t, db.Omit("Category", "ProductTags").Create(&product).Error)

	err = svc.Delete(context.Background(), category.ID)
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)

	require.NoError(t, db.Delete(&domain.Product{}, product.ID).Error)
	require.NoError(t, svc.Delete(context.Background(), category.ID))
}

func TestCategoryUpdateNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewCategoryService(db, nil)

	_, err := svc.Update(context.Background(), 12, 12, "Fruits")
	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

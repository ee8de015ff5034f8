package catalog

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fruitables/fruitables/internal/domain"
	"github.com/fruitables/fruitables/internal/imagestore"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return db
}

func newTestStore(t *testing.T) *imagestore.Store {
	t.Helper()
	store, err := imagestore.NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *imagestore.Store) {
	t.Helper()
	db := newTestDB(t)
	store := newTestStore(t)
	return NewService(db, store, nil), db, store
}

func seedCategory(t *testing.T, db *gorm.DB, name string) int64 {
	t.Helper()
	category := domain.Category{Name: name}
	require.NoError(t, db.Create(&category).Error)
	return category.ID
}

func seedTag(t *testing.T, db *gorm.DB, name string) int64 {
	t.Helper()
	tag := domain.Tag{Name: name}
	require.NoError(t, db.Create(&tag).Error)
	return tag.ID
}

func pngUpload(content string) *ImageUpload {
	return &ImageUpload{
		Filename:    "photo.png",
		ContentType: "image/png",
		Size:        int64(len(content)),
		Reader:      strings.NewReader(content),
	}
}

func decimalPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func productInput(name string, categoryID int64, tagIDs []int64, image *ImageUpload) *ProductInput {
	return &ProductInput{
		Name:        name,
		Description: "test product",
		Price:       decimalPtr(9.99),
		CategoryID:  categoryID,
		TagIDs:      tagIDs,
		Image:       image,
	}
}

func TestCreateProductTagSet(t *testing.T) {
	svc, db, store := newTestService(t)
	catID := seedCategory(t, db, "Fruits")
	fresh := seedTag(t, db, "fresh")
	organic := seedTag(t, db, "organic")

	// duplicate tag ids collapse to one association
	detail, err := svc.Create(context.Background(), productInput("Green Apple", catID, []int64{fresh, organic, fresh}, pngUpload("png-bytes")))
	require.NoError(t, err)

	assert.Equal(t, "Green Apple", detail.Name)
	assert.Equal(t, "Fruits", detail.Category)
	assert.ElementsMatch(t, []int64{fresh, organic}, detail.TagIDs)
	assert.ElementsMatch(t, []string{"fresh", "organic"}, detail.Tags)
	assert.True(t, store.Exists(detail.Image))

	var rows int64
	require.NoError(t, db.Model(&domain.ProductTag{}).Where("product_id = ?", detail.ID).Count(&rows).Error)
	assert.EqualValues(t, 2, rows)
}

func TestCreateRejectsNonImageUpload(t *testing.T) {
	svc, db, store := newTestService(t)
	catID := seedCategory(t, db, "Fruits")

	pdf := &ImageUpload{
		Filename:    "doc.pdf",
		ContentType: "application/pdf",
		Size:        128,
		Reader:      strings.NewReader("%PDF"),
	}
	_, err := svc.Create(context.Background(), productInput("Green Apple", catID, nil, pdf))

	var imgErr *InvalidImageError
	require.ErrorAs(t, err, &imgErr)

	var count int64
	require.NoError(t, db.Model(&domain.Product{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	files, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCreateRejectsOversizedImage(t *testing.T) {
	svc, db, _ := newTestService(t)
	catID := seedCategory(t, db, "Fruits")

	big := pngUpload("x")
	big.Size = MaxImageBytes + 1
	_, err := svc.Create(context.Background(), productInput("Green Apple", catID, nil, big))

	var imgErr *InvalidImageError
	require.ErrorAs(t, err, &imgErr)
}

func TestCreateMissingCategory(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), productInput("Green Apple", 42, nil, pngUpload("png")))

	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "category", nfErr.Entity)
}

func TestCreateValidationFields(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), &ProductInput{Price: decimalPtr(-1)})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "name")
	assert.Contains(t, vErr.Fields, "price")
	assert.Contains(t, vErr.Fields, "category_id")
	assert.Contains(t, vErr.Fields, "image")
}

func TestCreateRequiresPrice(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), &ProductInput{Name: "Green Apple"})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Price is required", vErr.Fields["price"])
}

func TestDetailNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Detail(context.Background(), 99)

	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestUpdateKeepsImageWhenOmitted(t *testing.T) {
	svc, db, store := newTestService(t)
	catID := seedCategory(t, db, "Fruits")

	created, err := svc.Create(context.Background(), productInput("Green Apple", catID, nil, pngUpload("png")))
	require.NoError(t, err)

	in := productInput("Golden Apple", catID, nil, nil)
	in.ID = created.ID
	updated, err := svc.Update(context.Background(), created.ID, in)
	require.NoError(t, err)

	assert.Equal(t, "Golden Apple", updated.Name)
	assert.Equal(t, created.Image, updated.Image)
	assert.True(t, store.Exists(created.Image))
}

func TestUpdateReplacesImage(t *testing.T) {
	svc, db, store := newTestService(t)
	catID := seedCategory(t, db, "Fruits")

	created, err := svc.Create(context.Background(), productInput("Green Apple", catID, nil, pngUpload("old")))
	require.NoError(t, err)

	in := productInput("Green Apple", catID, nil, pngUpload("new"))
	in.ID = created.ID
	updated, err := svc.Update(context.Background(), created.ID, in)
	require.NoError(t, err)

	assert.NotEqual(t, created.Image, updated.Image)
	assert.False(t, store.Exists(created.Image), "old image should be gone")
	assert.True(t, store.Exists(updated.Image))
}

func TestUpdateIDMismatch(t *testing.T) {
	svc, db, _ := newTestService(t)
	catID := seedCategory(t, db, "Fruits")

	created, err := svc.Create(context.Background(), productInput("Green Apple", catID, nil, pngUpload("png")))
	require.NoError(t, err)

	in := productInput("Green Apple", catID, nil, nil)
	in.ID = created.ID + 1
	_, err = svc.Update(context.Background(), created.ID, in)

	var brErr *BadRequestError
	require.ErrorAs(t, err, &brErr)
}

func TestUpdateNotFound(t *testing.T) {
	svc, db, _ := newTestService(t)
	catID := seedCategory(t, db, "Fruits")

	in := productInput("Ghost", catID, nil, nil)
	in.ID = 77
	_, err := svc.Update(context.Background(), 77, in)

	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestUpdateReplacesTagSet(t *testing.T) {
	svc, db, _ := newTestService(t)
	catID := seedCategory(t, db, "Fruits")
	fresh := seedTag(t, db, "fresh")
	organic := seedTag(t, db, "organic")
	seasonal := seedTag(t, db, "seasonal")

	created, err := svc.Create(context.Background(), productInput("Green Apple", catID, []int64{fresh, organic}, pngUpload("png")))
	require.NoError(t, err)

	in := productInput("Green Apple", catID, []int64{organic, seasonal}, nil)
	in.ID = created.ID
	updated, err := svc.Update(context.Background(), created.ID, in)
	require.NoError(t, err)

	assert.ElementsMatch(t, []int64{organic, seasonal}, updated.TagIDs)

	var rows []domain.ProductTag
	require.NoError(t, db.Where("product_id = ?", created.ID).Find(&rows).Error)
	got := make([]int64, 0, len(rows))
	for _, r := range rows {
		got = append(got, r.TagID)
	}
	assert.ElementsMatch(t, []int64{organic, seasonal}, got)
}

func TestDeleteCascadesAndRemovesImage(t *testing.T) {
	svc, db, store := newTestService(t)
	catID := seedCategory(t, db, "Fruits")
	fresh := seedTag(t, db, "fresh")

	created, err := svc.Create(context.Background(), productInput("Green Apple", catID, []int64{fresh}, pngUpload("png")))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	var products, joins int64
	require.NoError(t, db.Model(&domain.Product{}).Count(&products).Error)
	require.NoError(t, db.Model(&domain.ProductTag{}).Count(&joins).Error)
	assert.EqualValues(t, 0, products)
	assert.EqualValues(t, 0, joins)
	assert.False(t, store.Exists(created.Image))

	var nfErr *NotFoundError
	require.ErrorAs(t, svc.Delete(context.Background(), created.ID), &nfErr)
}

func TestListPagination(t *testing.T) {
	svc, db, _ := newTestService(t)
	catID := seedCategory(t, db, "Fruits")

	for i := 0; i < 12; i++ {
		created, err := svc.Create(context.Background(),
			productInput(fmt.Sprintf("Product %02d", i), catID, nil, pngUpload("png")))
		require.NoError(t, err)
		require.NotZero(t, created.ID)
	}

	page1, err := svc.List(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Len(t, page1.Items, 5)
	assert.Equal(t, 3, page1.PageCount)
	assert.EqualValues(t, 12, page1.Total)
	assert.Equal(t, "Fruits", page1.Items[0].Category)

	page3, err := svc.List(context.Background(), 3, 5)
	require.NoError(t, err)
	assert.Len(t, page3.Items, 2)
	assert.Equal(t, 3, page3.PageCount)
}

func TestListClampsPageSize(t *testing.T) {
	svc, _, _ := newTestService(t)

	result, err := svc.List(context.Background(), 0, 5000)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 100, result.PageSize)
}

func TestCreateCompensatesFileOnTxFailure(t *testing.T) {
	svc, db, store := newTestService(t)
	catID := seedCategory(t, db, "Fruits")
	fresh := seedTag(t, db, "fresh")

	// breaking the association table fails the transaction after the
	// image file has already been written
	require.NoError(t, db.Migrator().DropTable(&domain.ProductTag{}))

	_, err := svc.Create(context.Background(), productInput("Green Apple", catID, []int64{fresh}, pngUpload("png")))
	require.Error(t, err)

	files, listErr := store.List()
	require.NoError(t, listErr)
	assert.Empty(t, files)

	var products int64
	require.NoError(t, db.Model(&domain.Product{}).Count(&products).Error)
	assert.EqualValues(t, 0, products)
}

func TestUpdateCompensatesNewFileOnTxFailure(t *testing.T) {
	svc, db, store := newTestService(t)
	catID := seedCategory(t, db, "Fruits")

	created, err := svc.Create(context.Background(), productInput("Green Apple", catID, nil, pngUpload("png")))
	require.NoError(t, err)

	require.NoError(t, db.Exec(
		"CREATE TRIGGER block_update BEFORE UPDATE ON products BEGIN SELECT RAISE(ABORT, 'blocked'); END").Error)

	in := productInput("Golden Apple", catID, nil, pngUpload("new-png"))
	in.ID = created.ID
	_, err = svc.Update(context.Background(), created.ID, in)
	require.Error(t, err)

	// the replacement file is rolled back, the original stays
	files, listErr := store.List()
	require.NoError(t, listErr)
	require.Len(t, files, 1)
	assert.Equal(t, created.Image, files[0].Name)
}

func TestDetailPairsTagIDsWithNames(t *testing.T) {
	svc, db, _ := newTestService(t)
	catID := seedCategory(t, db, "Fruits")
	zesty := seedTag(t, db, "zesty")
	fresh := seedTag(t, db, "fresh")
	organic := seedTag(t, db, "organic")

	created, err := svc.Create(context.Background(),
		productInput("Green Apple", catID, []int64{organic, zesty, fresh}, pngUpload("png")))
	require.NoError(t, err)

	nameByID := map[int64]string{zesty: "zesty", fresh: "fresh", organic: "organic"}

	detail, err := svc.Detail(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, detail.Tags, len(detail.TagIDs))
	for i, id := range detail.TagIDs {
		assert.Equal(t, nameByID[id], detail.Tags[i])
	}
}

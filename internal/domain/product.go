package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// price fields serialize as bare JSON numbers, matching the storefront
	// payload contract
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a catalog item sold through the storefront
type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"size:200;index" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2)" json:"price"`
	Image       string          `gorm:"size:255" json:"image"` // generated upload filename, empty when no image
	CategoryID  int64           `gorm:"index" json:"category_id"`
	Category    Category        `json:"-"`
	ProductTags []ProductTag    `json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductTag joins products to tags. Rows are owned by the product and
// replaced as a set on update.
type ProductTag struct {
	ProductID int64 `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	TagID     int64 `gorm:"primaryKey;autoIncrement:false;index" json:"tag_id"`
}

// TableName returns table name
func (ProductTag) TableName() string {
	return "product_tags"
}

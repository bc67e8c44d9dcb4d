package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog.
// It is identified by its SKU and carries the stock level decremented by sales.
type Product struct {
	ID          uint            `gorm:"primaryKey"`
	SKU         string          `gorm:"column:sku;uniqueIndex;not null"`
	Title       string          `gorm:"not null;default:''"`
	Link        string          `gorm:"column:link"`
	ImageLink   string          `gorm:"column:image_link"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	SalePrice   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Explanation string          `gorm:"column:explanation"`
	Rating      float64         `gorm:"column:rating"`
	RatingCount int             `gorm:"column:rating_count"`
	Stock       int             `gorm:"not null;default:0;check:chk_products_stock,stock >= 0"`
	CategoryID  *uint           `gorm:"index"`
	Category    *Category       `gorm:"foreignKey:CategoryID"`
	DietID      *uint           `gorm:"index"`
	Diet        *Diet           `gorm:"foreignKey:DietID"`
	PizzaTypeID *uint           `gorm:"index"`
	PizzaType   *PizzaType      `gorm:"foreignKey:PizzaTypeID"`
	LastUpdated time.Time       `gorm:"not null"`
}

func (p *Product) TableName() string {
	return "products"
}

// CategoryName returns the joined category name, or "" when unset.
func (p *Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

func (p *Product) DietName() string {
	if p.Diet == nil {
		return ""
	}
	return p.Diet.Name
}

func (p *Product) PizzaTypeName() string {
	if p.PizzaType == nil {
		return ""
	}
	return p.PizzaType.Name
}

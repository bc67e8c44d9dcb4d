package models

import "time"

// CoPurchaseEdge records that SKU was sold together with RelatedSKU in one
// sale event. Edges are never unique: repeated sales of the same pair add
// more rows, and that multiplicity is the purchase-frequency signal.
type CoPurchaseEdge struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	SKU        string    `gorm:"column:sku;index;not null"`
	RelatedSKU string    `gorm:"column:related_sku;not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (e *CoPurchaseEdge) TableName() string {
	return "co_purchase_edges"
}

package models

// Category, Diet and PizzaType are name-keyed lookup tables referenced from
// products by surrogate id. Rows are created on first reference and never
// updated.
type Category struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

func (c *Category) TableName() string {
	return "categories"
}

type Diet struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

func (d *Diet) TableName() string {
	return "diets"
}

type PizzaType struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

func (p *PizzaType) TableName() string {
	return "pizza_types"
}

// Lookup is the common shape of a lookup table row.
type Lookup struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// LookupTable names one of the lookup tables.
type LookupTable string

const (
	LookupCategories LookupTable = "categories"
	LookupDiets      LookupTable = "diets"
	LookupPizzaTypes LookupTable = "pizza_types"
)

func (t LookupTable) Valid() bool {
	switch t {
	case LookupCategories, LookupDiets, LookupPizzaTypes:
		return true
	}
	return false
}

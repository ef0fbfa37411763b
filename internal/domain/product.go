package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categories accepted by the catalog API.
var Categories = []string{
	"electronics",
	"clothing",
	"furniture",
	"groceries",
	"toys",
	"sports",
	"beauty",
	"health",
	"automotive",
	"home",
	"smartphones",
	"laptops",
	"fragrances",
	"skincare",
	"home-decoration",
}

type Product struct {
	ID                 string          `bson:"_id,omitempty" json:"id"`
	Title              string          `bson:"title" json:"title"`
	Description        string          `bson:"description" json:"description"`
	Price              decimal.Decimal `bson:"price" json:"price"`
	DiscountPercentage float64         `bson:"discount_percentage" json:"discountPercentage"`
	Rating             float64         `bson:"rating" json:"rating"`
	Stock              int             `bson:"stock" json:"stock"`
	Brand              string          `bson:"brand" json:"brand"`
	Category           string          `bson:"category" json:"category"`
	Thumbnail          string          `bson:"thumbnail" json:"thumbnail"`
	Images             []string        `bson:"images" json:"images"`
	CreatedAt          time.Time       `bson:"created_at" json:"createdAt"`
}

// ProductFilter narrows product listings. Nil bounds are not applied.
type ProductFilter struct {
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	InStock  bool
	Search   string
	Page     int
	Limit    int
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID            string          `bson:"_id,omitempty" json:"id,omitempty"`
	OwnerID       string          `bson:"user_id" json:"ownerId"`
	Items         []CartItem      `bson:"items" json:"items"`
	TotalQuantity int             `bson:"total_quantity" json:"totalQuantity"`
	TotalAmount   decimal.Decimal `bson:"total_amount" json:"totalAmount"`
	CreatedAt     time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `bson:"updated_at" json:"updatedAt"`
}

// CartItem keeps a snapshot of the product display data taken when the line
// was added. Price is never refreshed from the catalog afterwards.
type CartItem struct {
	ID        string          `bson:"id" json:"id"`
	ProductID string          `bson:"product_id" json:"productId"`
	Title     string          `bson:"title" json:"title"`
	Price     decimal.Decimal `bson:"price" json:"price"`
	Thumbnail string          `bson:"thumbnail" json:"thumbnail"`
	Quantity  int             `bson:"quantity" json:"quantity"`
	LineTotal decimal.Decimal `bson:"line_total" json:"lineTotal"`
}

// NewCart returns an empty cart for the owner with zero totals.
func NewCart(ownerID string, now time.Time) *Cart {
	return &Cart{
		OwnerID:     ownerID,
		Items:       []CartItem{},
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Recalculate re-derives every line total and the cart totals from Items.
func (c *Cart) Recalculate() {
	if c.Items == nil {
		c.Items = []CartItem{}
	}
	for i := range c.Items {
		c.Items[i].LineTotal = c.Items[i].Total()
	}
	c.TotalQuantity, c.TotalAmount = Totals(c.Items)
}

func (i CartItem) Total() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Totals is a full fold over items; it never reuses previous totals.
func Totals(items []CartItem) (int, decimal.Decimal) {
	qty := 0
	amount := decimal.Zero
	for _, item := range items {
		qty += item.Quantity
		amount = amount.Add(item.Total())
	}
	return qty, amount
}

// Clone returns a copy that shares no item storage with c.
func (c Cart) Clone() Cart {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return c
}

func (c *Cart) FindByProduct(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) FindItem(itemID string) int {
	for i, item := range c.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

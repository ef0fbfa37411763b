package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecalculate(t *testing.T) {
	c := NewCart("u1", time.Now())
	c.Items = []CartItem{
		{ID: "a", Price: decimal.RequireFromString("10.10"), Quantity: 3, LineTotal: decimal.NewFromInt(1)},
		{ID: "b", Price: decimal.RequireFromString("0.20"), Quantity: 1},
	}
	c.TotalQuantity = 42

	c.Recalculate()

	assert.True(t, c.Items[0].LineTotal.Equal(decimal.RequireFromString("30.30")))
	assert.Equal(t, 4, c.TotalQuantity)
	assert.True(t, c.TotalAmount.Equal(decimal.RequireFromString("30.50")))
}

func TestRecalculate_EmptyCart(t *testing.T) {
	c := &Cart{OwnerID: "u1", TotalQuantity: 3, TotalAmount: decimal.NewFromInt(9)}

	c.Recalculate()

	assert.NotNil(t, c.Items)
	assert.Zero(t, c.TotalQuantity)
	assert.True(t, c.TotalAmount.IsZero())
}

func TestClone_DoesNotShareItems(t *testing.T) {
	c := NewCart("u1", time.Now())
	c.Items = append(c.Items, CartItem{ID: "a", ProductID: "p1", Quantity: 1})

	clone := c.Clone()
	clone.Items[0].Quantity = 5

	assert.Equal(t, 1, c.Items[0].Quantity)
	assert.Equal(t, 0, clone.FindItem("a"))
	assert.Equal(t, 0, clone.FindByProduct("p1"))
	assert.Equal(t, -1, clone.FindItem("missing"))
}

func TestUnavailable(t *testing.T) {
	assert.NoError(t, Unavailable(nil))

	cause := errors.New("socket closed")
	err := Unavailable(cause)
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, err, cause)

	assert.Same(t, err, Unavailable(err), "already marked errors are not wrapped twice")
}

func TestErrorKinds(t *testing.T) {
	for _, err := range []error{ErrCartNotFound, ErrItemNotFound, ErrProductNotFound, ErrUserNotFound} {
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.NotErrorIs(t, ErrOutOfStock, ErrNotFound)
}

package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/fashion-store/internal/pkg/apperror"
)

func line(variantID uint, price string, qty int) Line {
	return Line{
		VariantID: variantID,
		UnitPrice: decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

func TestCartTotal(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.Add(line(1, "100", 2), 10))
	require.NoError(t, c.Add(line(2, "50", 1), 10))

	assert.True(t, c.Total().Equal(decimal.NewFromInt(250)))
	assert.Equal(t, 3, c.ItemCount())
	assert.Len(t, c.Lines, 2)
}

func TestCartTotalIsExact(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.Add(line(1, "0.10", 3), 10))
	require.NoError(t, c.Add(line(2, "19.99", 1), 10))

	assert.Equal(t, "20.29", c.Total().StringFixed(2))
}

func TestCartAdd(t *testing.T) {
	tests := []struct {
		name      string
		existing  int
		add       int
		available int
		wantQty   int
		wantKind  apperror.Kind
	}{
		{"new line within stock", 0, 3, 5, 3, ""},
		{"new line above stock", 0, 6, 5, 0, apperror.KindConflict},
		{"merge within stock", 2, 3, 5, 5, ""},
		{"merge above stock", 2, 4, 5, 2, apperror.KindConflict},
		{"zero quantity", 0, 0, 5, 0, apperror.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Cart{}
			if tt.existing > 0 {
				require.NoError(t, c.Add(line(7, "10", tt.existing), 100))
			}

			err := c.Add(line(7, "10", tt.add), tt.available)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperror.KindOf(err))
			} else {
				require.NoError(t, err)
			}

			got, ok := c.Line(7)
			if tt.wantQty == 0 {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantQty, got.Quantity)
			assert.Len(t, c.Lines, 1)
		})
	}
}

func TestCartAddReportsAvailable(t *testing.T) {
	c := &Cart{}
	err := c.Add(line(1, "10", 9), 4)

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "insufficient_stock", appErr.Code)
	assert.Equal(t, 4, appErr.Details["available"])
}

func TestCartUpdate(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.Add(line(1, "10", 1), 10))

	require.NoError(t, c.Update(1, 4, 10))
	got, _ := c.Line(1)
	assert.Equal(t, 4, got.Quantity)

	assert.ErrorIs(t, c.Update(1, 0, 10), apperror.ErrValidation)
	assert.ErrorIs(t, c.Update(1, 11, 10), apperror.ErrConflict)
	assert.ErrorIs(t, c.Update(2, 1, 10), apperror.ErrNotFound)

	got, _ = c.Line(1)
	assert.Equal(t, 4, got.Quantity)
}

func TestCartRemoveIsIdempotent(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.Add(line(1, "10", 1), 10))
	require.NoError(t, c.Add(line(2, "20", 1), 10))

	c.Remove(1)
	c.Remove(1)
	c.Remove(99)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, uint(2), c.Lines[0].VariantID)
}

func TestCartIsEmpty(t *testing.T) {
	var nilCart *Cart
	assert.True(t, nilCart.IsEmpty())

	c := &Cart{}
	assert.True(t, c.IsEmpty())
	require.NoError(t, c.Add(line(1, "10", 1), 10))
	assert.False(t, c.IsEmpty())

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.NotNil(t, c.Lines)
}

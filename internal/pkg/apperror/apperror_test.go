package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestFromDB(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
	}{
		{"record not found", gorm.ErrRecordNotFound, KindNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound), KindNotFound},
		{"duplicate key", gorm.ErrDuplicatedKey, KindConflict},
		{"driver failure", errors.New("connection reset"), KindPersistence},
		{"typed passthrough", Validation("bad input"), KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromDB(tt.err, "product", "load product")
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}

	assert.NoError(t, FromDB(nil, "product", "load product"))
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("checkout: %w", Conflict("out_of_stock", "variant 3 is out of stock"))

	assert.True(t, errors.Is(err, ErrConflict))
	assert.True(t, errors.Is(err, &Error{Kind: KindConflict, Code: "out_of_stock"}))
	assert.False(t, errors.Is(err, &Error{Kind: KindConflict, Code: "duplicate"}))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestPersistenceHidesCause(t *testing.T) {
	cause := errors.New("pq: deadlock detected")
	err := Persistence("place order", cause)

	assert.Equal(t, "failed to place order", err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindPersistence, KindOf(errors.New("untyped")))
}

func TestWithDetail(t *testing.T) {
	err := Conflict("insufficient_stock", "not enough stock").WithDetail("available", 4)

	assert.Equal(t, 4, err.Details["available"])
}

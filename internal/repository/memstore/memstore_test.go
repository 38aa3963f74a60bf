package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-liquor-inventory/internal/apperr"
	"go-liquor-inventory/internal/model"
)

func TestInventoryCreate_SecondRowForProductConflicts(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Inventories().Create(ctx, model.NewInventory(1, time.Now())))
	err := s.Inventories().Create(ctx, model.NewInventory(1, time.Now()))
	assert.ErrorIs(t, err, apperr.ErrConcurrencyConflict)
}

package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	ManagerID uuid.UUID       `validate:"uuid_required"`
	Quantity  int             `validate:"gt=0"`
	Price     decimal.Decimal `validate:"dec_gte0"`
	Strength  decimal.Decimal `validate:"dec_gt0"`
}

func TestValidateStruct_Valid(t *testing.T) {
	errs := ValidateStruct(&line{
		ManagerID: uuid.New(),
		Quantity:  6,
		Price:     decimal.Zero,
		Strength:  decimal.RequireFromString("40"),
	})
	assert.Empty(t, errs)
}

func TestValidateStruct_ReportsEachField(t *testing.T) {
	errs := ValidateStruct(&line{
		Quantity: 0,
		Price:    decimal.RequireFromString("-3"),
		Strength: decimal.Zero,
	})
	require.Len(t, errs, 4)

	tags := map[string]string{}
	for _, e := range errs {
		tags[e.FailedField] = e.Tag
	}
	assert.Equal(t, "uuid_required", tags["line.ManagerID"])
	assert.Equal(t, "gt", tags["line.Quantity"])
	assert.Equal(t, "dec_gte0", tags["line.Price"])
	assert.Equal(t, "dec_gt0", tags["line.Strength"])
}

package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"go-liquor-inventory/internal/apperr"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"record not found", gorm.ErrRecordNotFound, apperr.KindNotFound},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}, apperr.KindConcurrencyConflict},
		{"mysql lock wait timeout", &mysql.MySQLError{Number: 1205}, apperr.KindConcurrencyConflict},
		{"postgres serialization failure", &pgconn.PgError{Code: "40001"}, apperr.KindConcurrencyConflict},
		{"postgres deadlock", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "40P01"}), apperr.KindConcurrencyConflict},
		{"mysql duplicate entry", &mysql.MySQLError{Number: 1062}, apperr.KindPersistence},
		{"other driver error", errors.New("connection refused"), apperr.KindPersistence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.KindOf(translate(tt.err, "inventory for product %d", 7)))
		})
	}
	assert.NoError(t, translate(nil, "anything"))
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(&mysql.MySQLError{Number: 1062}))
	assert.True(t, isDuplicateKey(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isDuplicateKey(&mysql.MySQLError{Number: 1213}))
	assert.False(t, isDuplicateKey(errors.New("boom")))
}

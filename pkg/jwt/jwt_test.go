package jwt

import (
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	id := uuid.New()

	token, err := GenerateToken(id, "ops@cellar.test", "Ops", "WAREHOUSE_MANAGER", []string{"import_order:view"}, "v1")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "WAREHOUSE_MANAGER", claims.RoleCode)
	assert.Equal(t, []string{"import_order:view"}, claims.Privileges)
	assert.Equal(t, "v1", claims.TokenVersion)
}

func TestValidateToken_RejectsOtherSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first")
	token, err := GenerateToken(uuid.New(), "a@b.test", "A", "", nil, "v1")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "second")
	_, err = ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_RejectsForeignIssuer(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	claims := &Claims{UserID: uuid.New(), RegisteredClaims: gojwt.RegisteredClaims{Issuer: "someone-else"}}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(GetSecretKey())
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/storefront-api/pkg/jwt"
)

const (
	secret = "test-secret-key-for-unit-tests"
	userID = "00000000-0000-0000-0000-000000000001"
	email  = "ana@example.com"
	issuer = "storefront-test"
)

func TestGenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, userID, email, "admin", issuer, 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, email, claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, issuer, claims.Issuer)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, userID, email, "customer", issuer, -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(secret, tok)
	assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, userID, email, "customer", issuer, 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)
}

func TestParse_Malformado(t *testing.T) {
	_, err := pkgjwt.Parse(secret, "token.invalido.aqui")
	assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)

	_, err = pkgjwt.Parse(secret, "")
	assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)
}

// Un token con alg=none no debe aceptarse aunque los claims sean válidos.
func TestParse_RechazaAlgNone(t *testing.T) {
	claims := pkgjwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: userID,
		Role:   "admin",
	}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(secret, tok)
	assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", userID, email, "admin", issuer, 60)
	assert.Error(t, err)
}

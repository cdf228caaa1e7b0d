package utils

import (
	"net/http/httptest"
	"testing"

	"lostfound/backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractVia(t *testing.T, cfg *config.Config, authorization string) (*Principal, error) {
	t.Helper()

	var (
		principal  *Principal
		extractErr error
	)
	app := fiber.New()
	app.Get("/probe", func(c *fiber.Ctx) error {
		principal, extractErr = ExtractPrincipal(c, cfg)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/probe", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	_, err := app.Test(req)
	require.NoError(t, err)
	return principal, extractErr
}

func TestPrincipalRoundTrip(t *testing.T) {
	cfg := &config.Config{JWTSecret: "testsecret"}

	token, err := GenerateToken(Principal{
		UserID:   7,
		Email:    "ana@example.com",
		Name:     "Ana",
		Verified: true,
		TokenID:  "tok-1",
	}, cfg)
	require.NoError(t, err)

	principal, err := extractVia(t, cfg, "Bearer "+token)
	require.NoError(t, err)

	assert.EqualValues(t, 7, principal.UserID)
	assert.Equal(t, "ana@example.com", principal.Email)
	assert.Equal(t, "Ana", principal.Name)
	assert.True(t, principal.Verified)
	assert.Equal(t, "tok-1", principal.TokenID)
}

func TestExtractPrincipalMissingToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "testsecret"}

	_, err := extractVia(t, cfg, "")
	assert.Error(t, err)
}

func TestExtractPrincipalWrongSecret(t *testing.T) {
	cfg := &config.Config{JWTSecret: "testsecret"}

	token, err := GenerateToken(Principal{Email: "ana@example.com", Verified: true}, &config.Config{JWTSecret: "othersecret"})
	require.NoError(t, err)

	_, err = extractVia(t, cfg, "Bearer "+token)
	assert.Error(t, err)
}

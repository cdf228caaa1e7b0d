package utils

import (
	"strings"
	"time"

	"lostfound/backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Principal is the verified identity claim bundle the auth boundary hands to
// every request. The backend trusts it as-is; there is no local credential
// check beyond signature verification.
type Principal struct {
	UserID   uint
	Email    string
	Name     string
	Verified bool
	TokenID  string
}

// GenerateToken signs a token carrying the claim bundle. Used by tests and
// local tooling; in production tokens come from the external auth server.
func GenerateToken(p Principal, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  p.UserID,
		"email":    p.Email,
		"name":     p.Name,
		"verified": p.Verified,
		"jti":      p.TokenID,
		"exp":      time.Now().Add(time.Hour * 72).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ExtractPrincipal parses and verifies the bearer token on the request and
// returns the claim bundle.
func ExtractPrincipal(c *fiber.Ctx, cfg *config.Config) (*Principal, error) {
	tokenString := c.Get("Authorization")
	if tokenString == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Missing authorization token")
	}
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	p := &Principal{}
	if v, ok := claims["user_id"].(float64); ok {
		p.UserID = uint(v)
	}
	if v, ok := claims["email"].(string); ok {
		p.Email = v
	}
	if v, ok := claims["name"].(string); ok {
		p.Name = v
	}
	if v, ok := claims["verified"].(bool); ok {
		p.Verified = v
	}
	if v, ok := claims["jti"].(string); ok {
		p.TokenID = v
	}

	return p, nil
}

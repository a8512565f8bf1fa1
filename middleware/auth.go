package middleware

import (
	"fmt"
	"os"
	"strings"

	"studio-booking/types"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// VerifyJWT verifies a JWT token issued by the external auth layer and
// returns its claims.
func VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET not configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid JWT token")
	}
	return claims, nil
}

// RequireAuthentication checks for a valid JWT token and attaches the
// resolved actor to the request context. Role policy is NOT decided here;
// the lifecycle engine evaluates its own permission table per request.
func RequireAuthentication() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		var token string

		if authHeader != "" {
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
					Message: "Invalid authorization header format",
					Status:  fiber.StatusUnauthorized,
				})
			}
			token = tokenParts[1]
		} else {
			// Fallback to cookie
			token = c.Cookies("access")
			if token == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
					Message: "Authorization token missing",
					Status:  fiber.StatusUnauthorized,
				})
			}
		}

		claims, err := VerifyJWT(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Message: "Session expired. Login again.",
				Status:  fiber.StatusUnauthorized,
			})
		}

		uuid, _ := claims["uuid"].(string)
		role, _ := claims["role"].(string)
		name, _ := claims["name"].(string)
		if uuid == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Message: "User UUID not found in token",
				Status:  fiber.StatusUnauthorized,
			})
		}

		c.Locals("user", claims)
		c.Locals("actor", types.Actor{ID: uuid, Name: name, Role: role})

		return c.Next()
	}
}

// CurrentActor returns the actor attached by RequireAuthentication.
func CurrentActor(c *fiber.Ctx) (types.Actor, bool) {
	actor, ok := c.Locals("actor").(types.Actor)
	return actor, ok
}

package serverutils

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JwtMiddleware authenticates the request from its Bearer token and stores
// the learner's id string under the "user_id" local. Tokens must be
// HMAC-signed with JWT_SECRET and carry a user_id claim holding a UUID.
func JwtMiddleware(ctx *fiber.Ctx) error {
	raw, ok := strings.CutPrefix(ctx.Get(fiber.HeaderAuthorization), "Bearer ")
	if !ok || raw == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("missing bearer token"))
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("invalid token"))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("invalid claims"))
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("token carries no user id"))
	}
	if _, err := uuid.Parse(userID); err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("malformed user id claim"))
	}

	ctx.Locals("user_id", userID)
	return ctx.Next()
}

package middleware

import (
	"errors"
	"strings"

	"inventory/internal/models"
	"inventory/internal/repositories"
	"inventory/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Keys under which AuthRequired stores the caller in fiber.Ctx locals.
const (
	LocalUser     = "user"
	LocalUserID   = "user_id"
	LocalUsername = "username"
)

var (
	errMissingHeader = errors.New("authorization header is required")
	errHeaderFormat  = errors.New("authorization header format must be 'Bearer <token>'")
)

// AuthRequired rejects requests without a valid bearer token for an existing
// user. The loaded user is available to later handlers through UserFrom.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return unauthorized(c, "Missing or malformed credentials", err)
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("jwt validation failed")
			return unauthorized(c, "Invalid or expired token", err)
		}

		userID, _ := claims["user_id"].(string)
		user, err := authService.CurrentUser(c.UserContext(), userID)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			log.Info().Str("user_id", userID).Str("path", c.Path()).Msg("token for unknown user")
			return unauthorized(c, "User no longer exists", err)
		case err != nil:
			log.Error().Err(err).Str("user_id", userID).Msg("failed to load token user")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not load user",
				"error":   err.Error(),
			})
		}

		c.Locals(LocalUser, user)
		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalUsername, user.Username)
		return c.Next()
	}
}

// UserFrom returns the user stored by AuthRequired, or nil outside it.
func UserFrom(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(LocalUser).(*models.User)
	return user
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errHeaderFormat
	}
	return strings.TrimSpace(token), nil
}

func unauthorized(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

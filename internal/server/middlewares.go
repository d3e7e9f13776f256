package server

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/superstar306/dexmate-robot/internal/config"
)

// AuthMiddleware resolves the calling user from the X-User-Id header
// set by the authenticating proxy and places the user id and global
// role in the downstream context. Token verification itself happens
// upstream; this service only ever sees an authenticated identity.
func (s *Server) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {

		var ctx = c.Request().Context()

		raw := c.Request().Header.Get(config.HEADER_KEY_X_USER_ID)
		if raw == "" {
			return c.JSON(401, map[string]string{"error": "X-User-Id header is required"})
		}

		uid, err := uuid.Parse(raw)
		if err != nil {
			return c.JSON(401, map[string]string{"error": "invalid user id"})
		}

		user, err := s.server.GetUserByID(ctx, uid.String())
		if err != nil {
			return c.JSON(401, map[string]string{
				"error":   err.Error(),
				"message": "User not found",
			})
		}

		ctx = context.WithValue(ctx, config.CTX_KEY_USER_ID, user.ID)
		ctx = context.WithValue(ctx, config.CTX_KEY_USER_ROLE, user.Role)

		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

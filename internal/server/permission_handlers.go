package server

import (
	"time"

	"github.com/superstar306/dexmate-robot/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type RobotPermission struct {
	ID          string `json:"id"`
	RobotSerial string `json:"robot_serial"`
	UserID      string `json:"user_id"`
	Level       string `json:"level"`
	GrantedByID string `json:"granted_by_id"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

func convertRobotPermission(p usecase.RobotPermission) RobotPermission {
	return RobotPermission{
		ID:          p.ID.String(),
		RobotSerial: p.RobotSerial,
		UserID:      p.UserID.String(),
		Level:       string(p.Level),
		GrantedByID: p.GrantedByID.String(),
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

type GrantPermissionRequest struct {
	Serial string `param:"serial" validate:"required"`
	UserID string `param:"user_id" validate:"required,uuid"`
	Level  string `json:"level" validate:"required,oneof=USAGE ADMIN"`
}

func (s *Server) GrantPermission(ctx echo.Context) error {
	var req GrantPermissionRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	uid, _ := uuid.Parse(req.UserID)
	perm, err := s.server.GrantPermission(ctx.Request().Context(), req.Serial, uid, usecase.PermissionLevel(req.Level))
	if err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}
	return ctx.JSON(200, Res{Data: convertRobotPermission(perm)})
}

type RevokePermissionRequest struct {
	Serial string `param:"serial" validate:"required"`
	UserID string `param:"user_id" validate:"required,uuid"`
}

func (s *Server) RevokePermission(ctx echo.Context) error {
	var req RevokePermissionRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	uid, _ := uuid.Parse(req.UserID)
	if err := s.server.RevokePermission(ctx.Request().Context(), req.Serial, uid); err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}
	return ctx.NoContent(204)
}

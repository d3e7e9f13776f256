package server

import (
	"encoding/json"
	"time"

	"github.com/superstar306/dexmate-robot/internal/usecase"

	"github.com/labstack/echo/v4"
)

type RobotSetting struct {
	RobotSerial string          `json:"robot_serial"`
	UserID      string          `json:"user_id"`
	Data        json.RawMessage `json:"data"`
	UpdatedAt   string          `json:"updated_at,omitempty"`
}

func convertRobotSetting(rs usecase.RobotSetting) RobotSetting {
	setting := RobotSetting{
		RobotSerial: rs.RobotSerial,
		UserID:      rs.UserID.String(),
		Data:        rs.Data,
	}
	if !rs.UpdatedAt.IsZero() {
		setting.UpdatedAt = rs.UpdatedAt.Format(time.RFC3339)
	}
	return setting
}

type GetSettingsRequest struct {
	Serial string `param:"serial" validate:"required"`
}

func (s *Server) GetSettings(ctx echo.Context) error {
	var req GetSettingsRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	setting, err := s.server.GetSettings(ctx.Request().Context(), req.Serial)
	if err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}
	return ctx.JSON(200, Res{Data: convertRobotSetting(setting)})
}

type SaveSettingsRequest struct {
	Serial string          `param:"serial" validate:"required"`
	Data   json.RawMessage `json:"data" validate:"required"`
}

func (s *Server) SaveSettings(ctx echo.Context) error {
	var req SaveSettingsRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	setting, err := s.server.SaveSettings(ctx.Request().Context(), req.Serial, req.Data)
	if err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}
	return ctx.JSON(200, Res{Data: convertRobotSetting(setting)})
}

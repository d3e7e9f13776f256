package server

import (
	"time"

	"github.com/superstar306/dexmate-robot/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Robot struct {
	Serial         string `json:"serial"`
	Name           string `json:"name"`
	Model          string `json:"model"`
	OwnerUserID    string `json:"owner_user_id,omitempty"`
	OwnerGroupID   string `json:"owner_group_id,omitempty"`
	AssignedUserID string `json:"assigned_user_id,omitempty"`
	AccessLevel    string `json:"access_level,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
	Group          *Group `json:"group,omitempty"`
}

func convertRobot(r usecase.Robot) Robot {
	robot := Robot{
		Serial:    r.Serial,
		Name:      r.Name,
		Model:     r.Model,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
	}
	if r.OwnerUserID != nil {
		robot.OwnerUserID = r.OwnerUserID.String()
	}
	if r.OwnerGroupID != nil {
		robot.OwnerGroupID = r.OwnerGroupID.String()
	}
	if r.AssignedUserID != nil {
		robot.AssignedUserID = r.AssignedUserID.String()
	}
	if r.Group != nil {
		g := convertGroup(*r.Group)
		robot.Group = &g
	}
	return robot
}

type ListRobotsRequest struct {
	Skip  int    `query:"skip"`
	Limit int    `query:"limit" validate:"required,gte=1,lte=100"`
	Model string `query:"model"`
}

func (s *Server) ListRobots(ctx echo.Context) error {
	var req ListRobotsRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	robots, total, err := s.server.ListRobots(ctx.Request().Context(), usecase.ListRobotsOption{
		Skip:  req.Skip,
		Limit: req.Limit,
		Model: req.Model,
	})
	if err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}

	list := make([]Robot, 0, len(robots))
	for _, r := range robots {
		list = append(list, convertRobot(r))
	}
	return ctx.JSON(200, Res{
		Data: list,
		Meta: &Meta{Total: total, Skip: req.Skip, Limit: req.Limit},
	})
}

type ListGroupRobotsRequest struct {
	GroupID string `param:"id" validate:"required,uuid"`
	Skip    int    `query:"skip"`
	Limit   int    `query:"limit" validate:"required,gte=1,lte=100"`
	Model   string `query:"model"`
}

func (s *Server) ListGroupRobots(ctx echo.Context) error {
	var req ListGroupRobotsRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	gid, _ := uuid.Parse(req.GroupID)
	robots, total, err := s.server.ListGroupRobots(ctx.Request().Context(), gid, usecase.ListRobotsOption{
		Skip:  req.Skip,
		Limit: req.Limit,
		Model: req.Model,
	})
	if err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}

	list := make([]Robot, 0, len(robots))
	for _, r := range robots {
		list = append(list, convertRobot(r))
	}
	return ctx.JSON(200, Res{
		Data: list,
		Meta: &Meta{Total: total, Skip: req.Skip, Limit: req.Limit},
	})
}

type GetRobotRequest struct {
	Serial string `param:"serial" validate:"required"`
}

func (s *Server) GetRobot(ctx echo.Context) error {
	var req GetRobotRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	robot, level, err := s.server.GetRobot(ctx.Request().Context(), req.Serial)
	if err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}

	r := convertRobot(robot)
	r.AccessLevel = string(level)
	return ctx.JSON(200, Res{Data: r})
}

type CreateRobotRequest struct {
	Serial string `json:"serial" validate:"required"`
	Name   string `json:"name" validate:"required"`
	Model  string `json:"model" validate:"required"`
}

func (s *Server) CreateRobot(ctx echo.Context) error {
	var req CreateRobotRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	robot, err := s.server.CreateRobot(ctx.Request().Context(), usecase.Robot{
		Serial: req.Serial,
		Name:   req.Name,
		Model:  req.Model,
	})
	if err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}
	return ctx.JSON(201, Res{Data: convertRobot(robot)})
}

type CreateGroupRobotRequest struct {
	GroupID string `param:"id" validate:"required,uuid"`
	Serial  string `json:"serial" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Model   string `json:"model" validate:"required"`
}

func (s *Server) CreateGroupRobot(ctx echo.Context) error {
	var req CreateGroupRobotRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	gid, _ := uuid.Parse(req.GroupID)
	robot, err := s.server.CreateGroupRobot(ctx.Request().Context(), gid, usecase.Robot{
		Serial: req.Serial,
		Name:   req.Name,
		Model:  req.Model,
	})
	if err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}
	return ctx.JSON(201, Res{Data: convertRobot(robot)})
}

type AssignRobotRequest struct {
	Serial string  `param:"serial" validate:"required"`
	UserID *string `json:"user_id" validate:"omitempty,uuid"`
}

func (s *Server) AssignRobot(ctx echo.Context) error {
	var req AssignRobotRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	var target *uuid.UUID
	if req.UserID != nil {
		uid, _ := uuid.Parse(*req.UserID)
		target = &uid
	}
	if err := s.server.AssignRobot(ctx.Request().Context(), req.Serial, target); err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}
	return ctx.NoContent(204)
}

type DeleteRobotRequest struct {
	Serial string `param:"serial" validate:"required"`
}

func (s *Server) DeleteRobot(ctx echo.Context) error {
	var req DeleteRobotRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	if err := s.server.DeleteRobot(ctx.Request().Context(), req.Serial); err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}
	return ctx.NoContent(204)
}

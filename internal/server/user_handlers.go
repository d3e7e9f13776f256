package server

import (
	"time"

	"github.com/superstar306/dexmate-robot/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func convertUser(u usecase.User) User {
	return User{
		ID:        u.ID.String(),
		Email:     u.Email,
		Username:  u.Username,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

type ListUsersRequest struct {
	Skip     int    `query:"skip"`
	Limit    int    `query:"limit" validate:"required,gte=1,lte=100"`
	Name     string `query:"name"`
	Username string `query:"username"`
}

func (s *Server) ListUsers(ctx echo.Context) error {
	var req ListUsersRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	users, total, err := s.server.ListUsers(ctx.Request().Context(), usecase.ListUsersOption{
		Skip:     req.Skip,
		Limit:    req.Limit,
		Name:     req.Name,
		Username: req.Username,
	})
	if err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}

	list := make([]User, 0, len(users))
	for _, u := range users {
		list = append(list, convertUser(u))
	}
	return ctx.JSON(200, Res{
		Data: list,
		Meta: &Meta{Total: total, Skip: req.Skip, Limit: req.Limit},
	})
}

type GetUserByIDRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (s *Server) GetUserByID(ctx echo.Context) error {
	var req GetUserByIDRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	user, err := s.server.GetUserByID(ctx.Request().Context(), req.ID)
	if err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}
	return ctx.JSON(200, Res{Data: convertUser(user)})
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Name     string `json:"name" validate:"required"`
}

func (s *Server) CreateUser(ctx echo.Context) error {
	var req CreateUserRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	user, err := s.server.CreateUser(ctx.Request().Context(), usecase.User{
		Email:    req.Email,
		Username: req.Username,
		Name:     req.Name,
	})
	if err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}
	return ctx.JSON(201, Res{Data: convertUser(user)})
}

type UpdateUserRequest struct {
	ID   string `param:"id" validate:"required,uuid"`
	Name string `json:"name"`
	Role string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

func (s *Server) UpdateUser(ctx echo.Context) error {
	var req UpdateUserRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	id, _ := uuid.Parse(req.ID)
	user, err := s.server.UpdateUser(ctx.Request().Context(), usecase.User{
		ID:   id,
		Name: req.Name,
		Role: usecase.GlobalRole(req.Role),
	})
	if err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}
	return ctx.JSON(200, Res{Data: convertUser(user)})
}

type DeleteUserRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (s *Server) DeleteUser(ctx echo.Context) error {
	var req DeleteUserRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	if err := s.server.DeleteUser(ctx.Request().Context(), req.ID); err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}
	return ctx.NoContent(204)
}

package server

import (
	"time"

	"github.com/superstar306/dexmate-robot/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Group struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	OwnerID     string       `json:"owner_id"`
	CreatedAt   string       `json:"created_at,omitempty"`
	UpdatedAt   string       `json:"updated_at,omitempty"`
	Owner       *User        `json:"owner,omitempty"`
	Memberships []Membership `json:"memberships,omitempty"`
}

type Membership struct {
	ID      string `json:"id"`
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
	User    *User  `json:"user,omitempty"`
}

func convertGroup(g usecase.Group) Group {
	group := Group{
		ID:        g.ID.String(),
		Name:      g.Name,
		OwnerID:   g.OwnerID.String(),
		CreatedAt: g.CreatedAt.Format(time.RFC3339),
		UpdatedAt: g.UpdatedAt.Format(time.RFC3339),
	}
	if g.Owner != nil {
		o := convertUser(*g.Owner)
		group.Owner = &o
	}
	for _, m := range g.Memberships {
		group.Memberships = append(group.Memberships, convertMembership(m))
	}
	return group
}

func convertMembership(m usecase.Membership) Membership {
	mem := Membership{
		ID:      m.ID.String(),
		GroupID: m.GroupID.String(),
		UserID:  m.UserID.String(),
		Role:    string(m.Role),
	}
	if m.User != nil {
		u := convertUser(*m.User)
		mem.User = &u
	}
	return mem
}

type ListGroupsRequest struct {
	Skip    int    `query:"skip"`
	Limit   int    `query:"limit" validate:"required,gte=1,lte=100"`
	Name    string `query:"name"`
	UserID  string `query:"user_id" validate:"omitempty,uuid"`
	OwnerID string `query:"owner_id" validate:"omitempty,uuid"`
}

func (s *Server) ListGroups(ctx echo.Context) error {
	var req ListGroupsRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	opt := usecase.ListGroupsOption{
		Skip:  req.Skip,
		Limit: req.Limit,
		Name:  req.Name,
	}
	if req.UserID != "" {
		opt.UserID, _ = uuid.Parse(req.UserID)
	}
	if req.OwnerID != "" {
		opt.OwnerID, _ = uuid.Parse(req.OwnerID)
	}

	groups, total, err := s.server.ListGroups(ctx.Request().Context(), opt)
	if err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}

	list := make([]Group, 0, len(groups))
	for _, g := range groups {
		list = append(list, convertGroup(g))
	}
	return ctx.JSON(200, Res{
		Data: list,
		Meta: &Meta{Total: total, Skip: req.Skip, Limit: req.Limit},
	})
}

type GetGroupByIDRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (s *Server) GetGroupByID(ctx echo.Context) error {
	var req GetGroupByIDRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	group, err := s.server.GetGroupByID(ctx.Request().Context(), req.ID)
	if err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}
	return ctx.JSON(200, Res{Data: convertGroup(group)})
}

type CreateGroupRequest struct {
	Name string `json:"name" validate:"required"`
}

func (s *Server) CreateGroup(ctx echo.Context) error {
	var req CreateGroupRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	group, err := s.server.CreateGroup(ctx.Request().Context(), usecase.Group{
		Name: req.Name,
	})
	if err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}
	return ctx.JSON(201, Res{Data: convertGroup(group)})
}

type DeleteGroupRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (s *Server) DeleteGroup(ctx echo.Context) error {
	var req DeleteGroupRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	if err := s.server.DeleteGroup(ctx.Request().Context(), req.ID); err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}
	return ctx.NoContent(204)
}

type UpsertMembershipRequest struct {
	GroupID string `param:"id" validate:"required,uuid"`
	UserID  string `param:"user_id" validate:"required,uuid"`
	Role    string `json:"role" validate:"required,oneof=MEMBER ADMIN"`
}

func (s *Server) UpsertMembership(ctx echo.Context) error {
	var req UpsertMembershipRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	gid, _ := uuid.Parse(req.GroupID)
	uid, _ := uuid.Parse(req.UserID)
	mem, err := s.server.UpsertMembership(ctx.Request().Context(), gid, uid, usecase.MembershipRole(req.Role))
	if err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}
	return ctx.JSON(200, Res{Data: convertMembership(mem)})
}

type RemoveMembershipRequest struct {
	GroupID string `param:"id" validate:"required,uuid"`
	UserID  string `param:"user_id" validate:"required,uuid"`
}

func (s *Server) RemoveMembership(ctx echo.Context) error {
	var req RemoveMembershipRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	gid, _ := uuid.Parse(req.GroupID)
	uid, _ := uuid.Parse(req.UserID)
	if err := s.server.RemoveMembership(ctx.Request().Context(), gid, uid); err != nil {
		return ctx.JSON(httpStatus(err), map[string]string{"error": err.Error()})
	}
	return ctx.NoContent(204)
}

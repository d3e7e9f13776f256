package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"

	"github.com/superstar306/dexmate-robot/internal/database"
	"github.com/superstar306/dexmate-robot/internal/usecase"
)

// Service is the engine surface the HTTP layer translates to and from
// the wire. Authority checks live behind it, not here.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// Close terminates the database connection.
	// It returns an error if the connection cannot be closed.
	Close() error

	ListUsers(context.Context, usecase.ListUsersOption) ([]usecase.User, int, error)
	GetUserByID(context.Context, string) (usecase.User, error)
	CreateUser(context.Context, usecase.User) (usecase.User, error)
	UpdateUser(context.Context, usecase.User) (usecase.User, error)
	DeleteUser(context.Context, string) error

	CreateGroup(context.Context, usecase.Group) (usecase.Group, error)
	GetGroupByID(context.Context, string) (usecase.Group, error)
	ListGroups(context.Context, usecase.ListGroupsOption) ([]usecase.Group, int, error)
	DeleteGroup(context.Context, string) error
	UpsertMembership(ctx context.Context, groupID, targetUserID uuid.UUID, role usecase.MembershipRole) (usecase.Membership, error)
	RemoveMembership(ctx context.Context, groupID, targetUserID uuid.UUID) error

	CreateRobot(context.Context, usecase.Robot) (usecase.Robot, error)
	CreateGroupRobot(ctx context.Context, groupID uuid.UUID, robot usecase.Robot) (usecase.Robot, error)
	GetRobot(ctx context.Context, serial string) (usecase.Robot, usecase.AccessLevel, error)
	ListRobots(context.Context, usecase.ListRobotsOption) ([]usecase.Robot, int, error)
	ListGroupRobots(ctx context.Context, groupID uuid.UUID, opt usecase.ListRobotsOption) ([]usecase.Robot, int, error)
	AssignRobot(ctx context.Context, serial string, targetUserID *uuid.UUID) error
	DeleteRobot(ctx context.Context, serial string) error

	GrantPermission(ctx context.Context, serial string, targetUserID uuid.UUID, level usecase.PermissionLevel) (usecase.RobotPermission, error)
	RevokePermission(ctx context.Context, serial string, targetUserID uuid.UUID) error

	GetSettings(ctx context.Context, serial string) (usecase.RobotSetting, error)
	SaveSettings(ctx context.Context, serial string, data json.RawMessage) (usecase.RobotSetting, error)
}

type Server struct {
	port int

	server    Service
	validator *validator.Validate
	logger    *slog.Logger
}

func NewServer() *http.Server {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	repo := database.New(logger)
	sv := usecase.New(repo)
	v := validator.New()

	port, _ := strconv.Atoi(os.Getenv("PORT"))
	NewServer := &Server{
		port:      port,
		server:    sv,
		validator: v,
		logger:    logger,
	}

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", NewServer.port),
		Handler:      NewServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}

package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.Use(NewEchoLogger(s.logger))
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-User-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/api/health", s.healthHandler)

	var userGroup = e.Group("/api/v1/users")
	userGroup.GET("", s.ListUsers)
	userGroup.POST("", s.CreateUser)
	userGroup.GET("/:id", s.GetUserByID)
	userGroup.PUT("/:id", s.UpdateUser, s.AuthMiddleware)
	userGroup.DELETE("/:id", s.DeleteUser, s.AuthMiddleware)

	var groupGroup = e.Group("/api/v1/groups", s.AuthMiddleware)
	groupGroup.GET("", s.ListGroups)
	groupGroup.POST("", s.CreateGroup)
	groupGroup.GET("/:id", s.GetGroupByID)
	groupGroup.DELETE("/:id", s.DeleteGroup)
	groupGroup.PUT("/:id/members/:user_id", s.UpsertMembership)
	groupGroup.DELETE("/:id/members/:user_id", s.RemoveMembership)
	groupGroup.GET("/:id/robots", s.ListGroupRobots)
	groupGroup.POST("/:id/robots", s.CreateGroupRobot)

	var robotGroup = e.Group("/api/v1/robots", s.AuthMiddleware)
	robotGroup.GET("", s.ListRobots)
	robotGroup.POST("", s.CreateRobot)
	robotGroup.GET("/:serial", s.GetRobot)
	robotGroup.DELETE("/:serial", s.DeleteRobot)
	robotGroup.PUT("/:serial/assignment", s.AssignRobot)
	robotGroup.PUT("/:serial/permissions/:user_id", s.GrantPermission)
	robotGroup.DELETE("/:serial/permissions/:user_id", s.RevokePermission)
	robotGroup.GET("/:serial/settings", s.GetSettings)
	robotGroup.PUT("/:serial/settings", s.SaveSettings)

	return e
}

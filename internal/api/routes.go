package api

import (
	"github.com/labstack/echo/v4"

	"skportal-backend/internal/auth"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(api *echo.Group, h *Handler) {
	// Health check (public)
	api.GET("/health", healthCheck)

	// Auth routes (public - login is rate limited per IP)
	authGroup := api.Group("/auth")
	authGroup.POST("/login", h.login, h.loginLimiter.Middleware())
	authGroup.POST("/logout", h.logout)
	authGroup.GET("/me", h.me, auth.RequireAuth(h.auth))
	authGroup.POST("/create-admin", h.createAdmin, h.loginLimiter.Middleware())

	// Public content, read through the anonymous connection
	api.GET("/announcements", h.listPublicAnnouncements)
	api.GET("/gallery", h.listPublicGallery)
	api.GET("/projects", h.listPublicProjects)
	api.GET("/site", h.getSite)
	api.POST("/grievances", h.submitGrievance, h.grievanceLimit)

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(auth.RequireAuth(h.auth))

	admin.GET("/announcements", h.listAnnouncements)
	admin.POST("/announcements", h.createAnnouncement)
	admin.PUT("/announcements", h.updateAnnouncement)
	admin.DELETE("/announcements", h.deleteAnnouncement)

	admin.GET("/gallery", h.listGallery)
	admin.POST("/gallery", h.createGalleryItem)
	admin.PUT("/gallery", h.updateGalleryItem)
	admin.DELETE("/gallery", h.deleteGalleryItem)

	admin.GET("/projects", h.listProjects)
	admin.POST("/projects", h.createProject)
	admin.PUT("/projects", h.updateProject)
	admin.DELETE("/projects", h.deleteProject)

	admin.POST("/upload", h.upload)

	admin.GET("/grievances", h.listGrievances)
	admin.PUT("/grievances/:id/status", h.updateGrievanceStatus)
	admin.DELETE("/grievances", h.deleteGrievance)

	admin.PUT("/site", h.updateSite)

	admin.GET("/sessions", h.listSessions)
	admin.DELETE("/sessions", h.revokeAllSessions)
	admin.DELETE("/sessions/:id", h.revokeSession)

	admin.GET("/audit", h.listAuditLogs)

	// Live feed for open dashboards
	if h.hub != nil {
		admin.GET("/events", h.hub.HandleWebSocket)
	}
}

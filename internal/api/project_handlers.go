package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"skportal-backend/internal/content"
)

func (h *Handler) listPublicProjects(c echo.Context) error {
	list, err := h.content.PublicProjects()
	if err != nil {
		return serviceError(c, err, "", "Failed to load projects")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) listProjects(c echo.Context) error {
	list, err := h.content.ListProjects()
	if err != nil {
		return serviceError(c, err, "", "Failed to load projects")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) createProject(c echo.Context) error {
	var in content.ProjectInput
	if err := c.Bind(&in); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	p, err := h.content.CreateProject(c.Request().Context(), actor(c), in)
	if err != nil {
		return serviceError(c, err, "", "Failed to create project")
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) updateProject(c echo.Context) error {
	var req struct {
		ID string `json:"id"`
		content.ProjectInput
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	p, err := h.content.UpdateProject(c.Request().Context(), actor(c), idFrom(c, req.ID), req.ProjectInput)
	if err != nil {
		return serviceError(c, err, "Project not found", "Failed to update project")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) deleteProject(c echo.Context) error {
	if err := h.content.DeleteProject(actor(c), c.QueryParam("id")); err != nil {
		return serviceError(c, err, "Project not found", "Failed to delete project")
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

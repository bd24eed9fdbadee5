package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"skportal-backend/internal/content"
)

// submitGrievance handles POST /api/grievances
func (h *Handler) submitGrievance(c echo.Context) error {
	var in content.GrievanceInput
	if err := c.Bind(&in); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	g, err := h.content.SubmitGrievance(in)
	if err != nil {
		return serviceError(c, err, "", "Failed to submit grievance")
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"id":      g.ID,
	})
}

func (h *Handler) listGrievances(c echo.Context) error {
	list, err := h.content.ListGrievances(c.QueryParam("status"))
	if err != nil {
		return serviceError(c, err, "", "Failed to load grievances")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) updateGrievanceStatus(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	g, err := h.content.UpdateGrievanceStatus(actor(c), c.Param("id"), req.Status)
	if err != nil {
		return serviceError(c, err, "Grievance not found", "Failed to update grievance")
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) deleteGrievance(c echo.Context) error {
	if err := h.content.DeleteGrievance(actor(c), c.QueryParam("id")); err != nil {
		return serviceError(c, err, "Grievance not found", "Failed to delete grievance")
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

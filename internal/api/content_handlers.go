package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"skportal-backend/internal/content"
)

// idFrom takes the record id from the query string, falling back to the body
func idFrom(c echo.Context, bodyID string) string {
	if id := c.QueryParam("id"); id != "" {
		return id
	}
	return bodyID
}

func (h *Handler) listPublicAnnouncements(c echo.Context) error {
	list, err := h.content.PublicAnnouncements()
	if err != nil {
		return serviceError(c, err, "", "Failed to load announcements")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) listAnnouncements(c echo.Context) error {
	list, err := h.content.ListAnnouncements()
	if err != nil {
		return serviceError(c, err, "", "Failed to load announcements")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) createAnnouncement(c echo.Context) error {
	var in content.AnnouncementInput
	if err := c.Bind(&in); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	a, err := h.content.CreateAnnouncement(c.Request().Context(), actor(c), in)
	if err != nil {
		return serviceError(c, err, "", "Failed to create announcement")
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) updateAnnouncement(c echo.Context) error {
	var req struct {
		ID string `json:"id"`
		content.AnnouncementInput
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	a, err := h.content.UpdateAnnouncement(c.Request().Context(), actor(c), idFrom(c, req.ID), req.AnnouncementInput)
	if err != nil {
		return serviceError(c, err, "Announcement not found", "Failed to update announcement")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) deleteAnnouncement(c echo.Context) error {
	if err := h.content.DeleteAnnouncement(actor(c), c.QueryParam("id")); err != nil {
		return serviceError(c, err, "Announcement not found", "Failed to delete announcement")
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) listPublicGallery(c echo.Context) error {
	list, err := h.content.PublicGallery()
	if err != nil {
		return serviceError(c, err, "", "Failed to load gallery")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) listGallery(c echo.Context) error {
	list, err := h.content.ListGallery()
	if err != nil {
		return serviceError(c, err, "", "Failed to load gallery")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) createGalleryItem(c echo.Context) error {
	var in content.GalleryInput
	if err := c.Bind(&in); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	g, err := h.content.CreateGalleryItem(c.Request().Context(), actor(c), in)
	if err != nil {
		return serviceError(c, err, "", "Failed to create gallery item")
	}
	return c.JSON(http.StatusCreated, g)
}

func (h *Handler) updateGalleryItem(c echo.Context) error {
	var req struct {
		ID string `json:"id"`
		content.GalleryInput
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	g, err := h.content.UpdateGalleryItem(c.Request().Context(), actor(c), idFrom(c, req.ID), req.GalleryInput)
	if err != nil {
		return serviceError(c, err, "Gallery item not found", "Failed to update gallery item")
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) deleteGalleryItem(c echo.Context) error {
	if err := h.content.DeleteGalleryItem(actor(c), c.QueryParam("id")); err != nil {
		return serviceError(c, err, "Gallery item not found", "Failed to delete gallery item")
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// upload handles POST /api/admin/upload
func (h *Handler) upload(c echo.Context) error {
	var req content.UploadRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	url, err := h.content.Upload(c.Request().Context(), actor(c), req)
	if err != nil {
		return serviceError(c, err, "", "Failed to upload file.")
	}
	return c.JSON(http.StatusOK, map[string]string{"publicUrl": url})
}

func (h *Handler) getSite(c echo.Context) error {
	site, err := h.content.Site()
	if err != nil {
		return serviceError(c, err, "", "Failed to load site settings")
	}
	return c.JSON(http.StatusOK, site)
}

func (h *Handler) updateSite(c echo.Context) error {
	var values map[string]string
	if err := c.Bind(&values); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	site, err := h.content.UpdateSite(actor(c), values)
	if err != nil {
		return serviceError(c, err, "", "Failed to update site settings")
	}
	return c.JSON(http.StatusOK, site)
}

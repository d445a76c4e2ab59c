package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/marketplace/internal/middleware"
	"github.com/suteetoe/marketplace/internal/response"
	"github.com/suteetoe/marketplace/internal/store"
	"github.com/suteetoe/marketplace/pkg/logger"
	"github.com/suteetoe/marketplace/prometheus"
	"go.uber.org/zap"
)

// NeedRequest defines the structure for need creation/update requests
type NeedRequest struct {
	ServiceType string   `json:"serviceType"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImgURLs     []string `json:"imgUrls"`
	VideoURL    string   `json:"videoUrl"`
	Region      string   `json:"region"`
}

func (r *NeedRequest) validate() string {
	switch {
	case strings.TrimSpace(r.Title) == "":
		return "title is required"
	case strings.TrimSpace(r.ServiceType) == "":
		return "serviceType is required"
	case strings.TrimSpace(r.Description) == "":
		return "description is required"
	}
	return ""
}

func (r *NeedRequest) input() store.NeedInput {
	return store.NeedInput{
		Title:       r.Title,
		Description: r.Description,
		Region:      r.Region,
		ServiceType: r.ServiceType,
		ImgURLs:     r.ImgURLs,
		VideoURL:    r.VideoURL,
	}
}

// NeedHandler serves need endpoints
type NeedHandler struct {
	store *store.Store
}

// NewNeedHandler creates a NeedHandler
func NewNeedHandler(s *store.Store) *NeedHandler {
	return &NeedHandler{store: s}
}

// Create publishes a need for the caller
func (h *NeedHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	caller := middleware.CurrentUser(c)

	var req NeedRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid need request", zap.Error(err))
		return badRequest(c, "Invalid request data")
	}
	if msg := req.validate(); msg != "" {
		return badRequest(c, msg)
	}

	need, err := h.store.CreateNeed(c.Request().Context(), caller.ID, req.input())
	if err != nil {
		return fail(c, log, err, "Need")
	}
	prometheus.RecordNeedOperation("create")

	log.Info("Need created", zap.Uint("need_id", need.ID), zap.String("title", need.Title))
	return response.OK(c, toNeedDTO(store.NeedView{Need: *need, OwnerName: caller.Username}))
}

// List returns a public page of needs, newest first
func (h *NeedHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	page, size, err := pageParams(c, "page", "size", 10, 100)
	if err != nil {
		return fail(c, log, err, "Need")
	}

	views, total, err := h.store.ListNeeds(c.Request().Context(), page, size)
	if err != nil {
		return fail(c, log, err, "Need")
	}
	return response.OK(c, PageDTO{Records: toNeedDTOs(views), Total: total, Page: page, Size: size})
}

// MyList returns the caller's needs filtered by keyword and service type
func (h *NeedHandler) MyList(c echo.Context) error {
	log := logger.FromEcho(c)
	caller := middleware.CurrentUser(c)

	pageNum, pageSize, err := pageParams(c, "pageNum", "pageSize", 15, 200)
	if err != nil {
		return fail(c, log, err, "Need")
	}

	views, err := h.store.ListMyNeeds(c.Request().Context(), caller.ID, store.NeedFilter{
		Keyword:     strings.TrimSpace(c.QueryParam("keyword")),
		ServiceType: strings.TrimSpace(c.QueryParam("serviceType")),
	})
	if err != nil {
		return fail(c, log, err, "Need")
	}
	records := toNeedDTOs(paginate(views, pageNum, pageSize))
	return response.OK(c, PageDTO{Records: records, Total: int64(len(views))})
}

// Detail returns one need
func (h *NeedHandler) Detail(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := ParseID(c.Param("id"))
	if err != nil {
		return fail(c, log, err, "Need")
	}
	view, err := h.store.GetNeed(c.Request().Context(), id)
	if err != nil {
		return fail(c, log, err, "Need")
	}
	return response.OK(c, toNeedDTO(*view))
}

// Update overwrites a need owned by the caller
func (h *NeedHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	caller := middleware.CurrentUser(c)

	id, err := ParseID(c.Param("id"))
	if err != nil {
		return fail(c, log, err, "Need")
	}
	var req NeedRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid need request", zap.Error(err))
		return badRequest(c, "Invalid request data")
	}
	if msg := req.validate(); msg != "" {
		return badRequest(c, msg)
	}

	if _, err := h.store.UpdateNeed(c.Request().Context(), id, caller.ID, req.input()); err != nil {
		return fail(c, log, err, "Need")
	}
	prometheus.RecordNeedOperation("update")

	view, err := h.store.GetNeed(c.Request().Context(), id)
	if err != nil {
		return fail(c, log, err, "Need")
	}
	log.Info("Need updated", zap.Uint("need_id", id))
	return response.JSON(c, http.StatusOK, "updated", toNeedDTO(*view))
}

// Cancel closes a need owned by the caller for further responses
func (h *NeedHandler) Cancel(c echo.Context) error {
	log := logger.FromEcho(c)
	caller := middleware.CurrentUser(c)

	id, err := ParseID(c.Param("id"))
	if err != nil {
		return fail(c, log, err, "Need")
	}
	if _, err := h.store.CancelNeed(c.Request().Context(), id, caller.ID); err != nil {
		return fail(c, log, err, "Need")
	}
	prometheus.RecordNeedOperation("cancel")

	view, err := h.store.GetNeed(c.Request().Context(), id)
	if err != nil {
		return fail(c, log, err, "Need")
	}
	log.Info("Need cancelled", zap.Uint("need_id", id))
	return response.JSON(c, http.StatusOK, "cancelled", toNeedDTO(*view))
}

// Delete removes a need owned by the caller
func (h *NeedHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	caller := middleware.CurrentUser(c)

	id, err := ParseID(c.Param("id"))
	if err != nil {
		return fail(c, log, err, "Need")
	}
	if err := h.store.DeleteNeed(c.Request().Context(), id, caller.ID); err != nil {
		return fail(c, log, err, "Need")
	}
	prometheus.RecordNeedOperation("delete")

	log.Info("Need deleted", zap.Uint("need_id", id))
	return response.JSON(c, http.StatusOK, "deleted", nil)
}

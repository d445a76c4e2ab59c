package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/marketplace/internal/middleware"
	"github.com/suteetoe/marketplace/internal/model"
	"github.com/suteetoe/marketplace/internal/response"
	"github.com/suteetoe/marketplace/internal/store"
	"github.com/suteetoe/marketplace/pkg/logger"
	"github.com/suteetoe/marketplace/prometheus"
	"go.uber.org/zap"
)

// ServiceRequest defines the structure for offer creation requests
type ServiceRequest struct {
	NeedID      *uint         `json:"needId"`
	ServiceType string        `json:"serviceType"`
	Title       string        `json:"title"`
	Content     string        `json:"content"`
	Files       []interface{} `json:"files"`
}

// ServiceUpdateRequest holds a partial offer update
type ServiceUpdateRequest struct {
	ServiceType *string        `json:"serviceType"`
	Title       *string        `json:"title"`
	Content     *string        `json:"content"`
	Files       *[]interface{} `json:"files"`
}

// ServiceHandler serves offer endpoints
type ServiceHandler struct {
	store *store.Store
}

// NewServiceHandler creates a ServiceHandler
func NewServiceHandler(s *store.Store) *ServiceHandler {
	return &ServiceHandler{store: s}
}

// Create submits an offer against an open need
func (h *ServiceHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	caller := middleware.CurrentUser(c)

	var req ServiceRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid service request", zap.Error(err))
		return badRequest(c, "Invalid request data")
	}
	switch {
	case req.NeedID == nil:
		return badRequest(c, "needId is required")
	case strings.TrimSpace(req.Title) == "":
		return badRequest(c, "title is required")
	case strings.TrimSpace(req.Content) == "":
		return badRequest(c, "content is required")
	}

	svc, err := h.store.CreateService(c.Request().Context(), caller.ID, store.ServiceInput{
		NeedID:      req.NeedID,
		Title:       req.Title,
		Content:     req.Content,
		ServiceType: req.ServiceType,
		Files:       fileRefs(req.Files),
	})
	if err != nil {
		log.Warn("Service creation rejected", zap.Uintp("need_id", req.NeedID), zap.Error(err))
		return fail(c, log, err, "Need")
	}
	prometheus.RecordServiceOperation("create")

	log.Info("Service created", zap.Uint("service_id", svc.ID), zap.Uintp("need_id", svc.NeedID))
	return response.OK(c, toServiceDTO(store.ServiceView{Service: *svc, OwnerName: caller.Username}))
}

// List returns all offers filtered by keyword and service type
func (h *ServiceHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	views, err := h.store.ListServices(c.Request().Context(), store.ServiceFilter{
		Keyword:     strings.TrimSpace(c.QueryParam("keyword")),
		ServiceType: strings.TrimSpace(c.QueryParam("serviceType")),
	})
	if err != nil {
		return fail(c, log, err, "Service")
	}
	return response.OK(c, toServiceDTOs(views))
}

// MyList returns the caller's own offers
func (h *ServiceHandler) MyList(c echo.Context) error {
	log := logger.FromEcho(c)
	caller := middleware.CurrentUser(c)

	views, err := h.store.ListMyServices(c.Request().Context(), caller.ID)
	if err != nil {
		return fail(c, log, err, "Service")
	}
	return response.OK(c, toServiceDTOs(views))
}

// Detail returns one offer; the id may be embedded in a token like "service_12"
func (h *ServiceHandler) Detail(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := ParseEmbeddedID(c.Param("id"))
	if err != nil {
		return fail(c, log, err, "Service")
	}
	view, err := h.store.GetService(c.Request().Context(), id)
	if err != nil {
		return fail(c, log, err, "Service")
	}
	return response.OK(c, toServiceDTO(*view))
}

// Update applies a partial update to an offer owned by the caller
func (h *ServiceHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	caller := middleware.CurrentUser(c)

	id, err := ParseID(c.Param("id"))
	if err != nil {
		return fail(c, log, err, "Service")
	}
	var req ServiceUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid service request", zap.Error(err))
		return badRequest(c, "Invalid request data")
	}

	patch := store.ServicePatch{
		Title:       req.Title,
		Content:     req.Content,
		ServiceType: req.ServiceType,
	}
	if req.Files != nil {
		files := fileRefs(*req.Files)
		patch.Files = &files
	}

	if _, err := h.store.UpdateService(c.Request().Context(), id, caller.ID, patch); err != nil {
		return fail(c, log, err, "Service")
	}
	prometheus.RecordServiceOperation("update")

	return h.respondWithService(c, id, "updated")
}

// ByNeed lists the offers attached to a need
func (h *ServiceHandler) ByNeed(c echo.Context) error {
	log := logger.FromEcho(c)

	needID, err := ParseID(c.Param("needId"))
	if err != nil {
		return fail(c, log, err, "Need")
	}
	views, err := h.store.ListServicesByNeed(c.Request().Context(), needID)
	if err != nil {
		return fail(c, log, err, "Need")
	}
	return response.OK(c, toServiceDTOs(views))
}

// Confirm accepts an offer and rejects its siblings. Only the need owner may confirm.
func (h *ServiceHandler) Confirm(c echo.Context) error {
	return h.review(c, model.ServiceAccepted)
}

// Reject rejects a single offer. Only the need owner may reject.
func (h *ServiceHandler) Reject(c echo.Context) error {
	return h.review(c, model.ServiceRejected)
}

func (h *ServiceHandler) review(c echo.Context, decision model.ServiceStatus) error {
	log := logger.FromEcho(c)
	caller := middleware.CurrentUser(c)

	id, err := ParseID(c.Param("id"))
	if err != nil {
		return fail(c, log, err, "Service")
	}

	op, msg := "accept", "accepted"
	if decision == model.ServiceAccepted {
		_, err = h.store.AcceptService(c.Request().Context(), id, caller.ID)
	} else {
		op, msg = "reject", "rejected"
		_, err = h.store.RejectService(c.Request().Context(), id, caller.ID)
	}
	if err != nil {
		log.Warn("Service review rejected", zap.Uint("service_id", id), zap.String("operation", op), zap.Error(err))
		return fail(c, log, err, "Service")
	}
	prometheus.RecordServiceOperation(op)

	log.Info("Service reviewed", zap.Uint("service_id", id), zap.String("operation", op))
	return h.respondWithService(c, id, msg)
}

func (h *ServiceHandler) respondWithService(c echo.Context, id uint, msg string) error {
	view, err := h.store.GetService(c.Request().Context(), id)
	if err != nil {
		return fail(c, logger.FromEcho(c), err, "Service")
	}
	return response.JSON(c, http.StatusOK, msg, toServiceDTO(*view))
}

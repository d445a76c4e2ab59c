package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/suteetoe/marketplace/internal/response"
	"github.com/suteetoe/marketplace/internal/stats"
	"github.com/suteetoe/marketplace/pkg/logger"
	"go.uber.org/zap"
)

// StatsHandler serves the monthly statistics report
type StatsHandler struct {
	engine *stats.Engine
}

// NewStatsHandler creates a StatsHandler
func NewStatsHandler(engine *stats.Engine) *StatsHandler {
	return &StatsHandler{engine: engine}
}

// Stats reads startMonth, endMonth and regionKeyword from the query string and/or body
func (h *StatsHandler) Stats(c echo.Context) error {
	log := logger.FromEcho(c)

	var q stats.Query
	binder := &echo.DefaultBinder{}
	if err := binder.BindQueryParams(c, &q); err != nil {
		return badRequest(c, "Invalid query parameters")
	}
	if err := binder.BindBody(c, &q); err != nil {
		log.Warn("Invalid stats request", zap.Error(err))
		return badRequest(c, "Invalid request data")
	}

	result, err := h.engine.Run(c.Request().Context(), q)
	if err != nil {
		return fail(c, log, err, "Stats")
	}

	log.Info("Stats computed",
		zap.String("start_month", q.StartMonth),
		zap.String("end_month", q.EndMonth),
		zap.Int("rows", len(result.List)))
	return response.OK(c, result)
}

package api

import (
	"errors"
	"net/http"

	"IPOWatch/internal/domain/models"
	"IPOWatch/internal/usecase"
	xhttp "IPOWatch/pkg/http"
	xlogger "IPOWatch/pkg/logger"

	"github.com/labstack/echo/v4"
)

// IPOEchoHandler serves the read-only status endpoints.
type IPOEchoHandler struct {
	logger *xlogger.Logger
	status *usecase.StatusReader
}

func NewIPOEchoHandler(logger *xlogger.Logger, status *usecase.StatusReader) *IPOEchoHandler {
	return &IPOEchoHandler{logger: logger, status: status}
}

func (h *IPOEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api/ipo")
	g.GET("/monthly", h.Monthly)
	g.GET("/decision", h.Decision)
}

func (h *IPOEchoHandler) Monthly(c echo.Context) error {
	req := &models.MonthlyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if req.From != "" && req.To != "" && req.From > req.To {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestFieldf("from", "from %s is after to %s", req.From, req.To).WithParam("to", req.To))
	}

	res, err := h.status.Monthly(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "monthly", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

func (h *IPOEchoHandler) Decision(c echo.Context) error {
	res, err := h.status.Decision(c.Request().Context())
	if err != nil {
		return h.fail(c, "decision", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *IPOEchoHandler) Health(c echo.Context) error {
	res, err := h.status.Health(c.Request().Context())
	if err != nil {
		h.logger.Error("health check failed", xlogger.Error(err))
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
	}
	return c.JSON(http.StatusOK, res)
}

func (h *IPOEchoHandler) fail(c echo.Context, op string, err error) error {
	if errors.Is(err, models.ErrNoSnapshot) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no completed pass yet"))
	}
	h.logger.Error(op+" usecase error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.UnavailableError("snapshot store unavailable").WithError(err))
}

package simulation

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"teagate/internal/constants"
	"teagate/internal/logger"
	"teagate/internal/management"
	"teagate/pkg/errors"
)

type Handler struct {
	service *Service
	logger  logger.Logger
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		v1.POST("/simulate/:teaLotId", h.Simulate)
		v1.POST("/simulate", h.BulkSimulate)
		v1.GET("/simulations", h.History)
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	status := errors.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	}
	c.JSON(status, errors.ToErrorResponse(err))
}

// Simulate godoc
// @Summary      Simulate one tea lot
// @Description  Runs every rule against the lot and reports whether it can ship
// @Tags         simulation
// @Produce      json
// @Param        teaLotId  path      int  true  "Tea lot ID"
// @Success      200       {object}  SimulationResponse
// @Failure      400       {object}  errors.ErrorResponse
// @Failure      404       {object}  errors.ErrorResponse
// @Failure      422       {object}  errors.ErrorResponse
// @Router       /simulate/{teaLotId} [post]
func (h *Handler) Simulate(c *gin.Context) {
	id, err := management.ParseID(c.Param("teaLotId"))
	if err != nil {
		h.handleError(c, errors.ErrValidation.WithCause(err).WithDetail("message", "invalid teaLotId"))
		return
	}

	resp, err := h.service.Simulate(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// BulkSimulate godoc
// @Summary      Simulate several tea lots
// @Description  Lots are picked by id, by CEL selector, or both; unknown ids are skipped
// @Tags         simulation
// @Accept       json
// @Produce      json
// @Param        body  body      BulkSimulationRequest  true  "Lots to simulate"
// @Success      200   {object}  BulkSimulationResponse
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      422   {object}  errors.ErrorResponse
// @Router       /simulate [post]
func (h *Handler) BulkSimulate(c *gin.Context) {
	var req BulkSimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, errors.ErrValidation.WithCause(err).WithDetail("message", "invalid request body"))
		return
	}
	req.Selector = strings.TrimSpace(req.Selector)

	resp, err := h.service.BulkSimulate(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History godoc
// @Summary      Archived simulation reports
// @Tags         simulation
// @Produce      json
// @Param        lot_code  query     string  false  "Only reports for this lot"
// @Param        limit     query     int     false  "Maximum number of reports"
// @Success      200       {array}   Report
// @Failure      503       {object}  errors.ErrorResponse
// @Router       /simulations [get]
func (h *Handler) History(c *gin.Context) {
	limit := constants.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	reports, err := h.service.History(c.Request.Context(), strings.TrimSpace(c.Query("lot_code")), limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

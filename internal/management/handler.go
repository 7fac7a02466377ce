package management

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"teagate/internal/constants"
	"teagate/internal/logger"
	"teagate/pkg/cel"
	"teagate/pkg/errors"
)

const (
	HeaderChangedBy    = "X-Changed-By"
	HeaderChangeReason = "X-Change-Reason"
)

type BaseHandler struct {
	Service Service
	Logger  logger.Logger
}

func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	status := errors.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	} else {
		h.Logger.WarnwCtx(c.Request.Context(), "Request rejected", "error", err, "path", c.Request.URL.Path, "status", status)
	}

	c.JSON(status, errors.ToErrorResponse(err))
}

func (h *BaseHandler) badRequest(c *gin.Context, message string, cause error) {
	appErr := errors.ErrValidation.WithDetail("message", message)
	if cause != nil {
		appErr = appErr.WithCause(cause)
	}
	c.JSON(http.StatusBadRequest, errors.ToErrorResponse(appErr))
}

type Handler struct {
	BaseHandler
}

func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		BaseHandler: BaseHandler{
			Service: service,
			Logger:  log,
		},
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	v1.Use(ActorMiddleware())
	{
		lots := v1.Group("/tea-lots")
		{
			lots.GET("", h.ListTeaLots)
			lots.POST("", h.CreateTeaLot)
			lots.DELETE("", h.BulkDeleteTeaLots)
			lots.GET("/:id", h.GetTeaLot)
			lots.DELETE("/:id", h.DeleteTeaLot)
		}

		rules := v1.Group("/rules")
		{
			rules.GET("", h.ListRules)
			rules.POST("", h.CreateRule)
			rules.DELETE("", h.BulkDeleteRules)
			rules.GET("/:id", h.GetRule)
			rules.PUT("/:id", h.UpdateRule)
			rules.DELETE("/:id", h.DeleteRule)
			rules.GET("/:id/versions", h.GetRuleVersions)
			rules.GET("/:id/versions/:version", h.GetRuleVersion)
			rules.GET("/:id/audit", h.GetRuleAuditLogs)
		}

		v1.GET("/audit-logs", h.GetAuditLogs)
		v1.GET("/selectors/examples", h.GetSelectorExamples)

		v1.GET("/export/tea-lots", h.ExportTeaLots)
		v1.GET("/export/rules", h.ExportRules)
		v1.POST("/import/tea-lots", h.ImportTeaLots)
		v1.POST("/import/rules", h.ImportRules)
	}
}

// ActorMiddleware puts the caller's identity on the request context for
// rule versions and audit logs.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := Actor{
			ChangedBy:    strings.TrimSpace(c.GetHeader(HeaderChangedBy)),
			ChangeReason: strings.TrimSpace(c.GetHeader(HeaderChangeReason)),
			IPAddress:    c.ClientIP(),
		}
		c.Request = c.Request.WithContext(WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// ListTeaLots godoc
// @Summary      List tea lots
// @Description  List tea lots by id, optionally narrowed by a CEL selector
// @Tags         tea-lots
// @Produce      json
// @Param        selector  query     string  false  "CEL selector, e.g. moisture > 9.0"
// @Param        limit     query     int     false  "Maximum number of lots"
// @Success      200       {array}   TeaLot
// @Failure      400       {object}  errors.ErrorResponse
// @Failure      500       {object}  errors.ErrorResponse
// @Router       /tea-lots [get]
func (h *Handler) ListTeaLots(c *gin.Context) {
	filter := TeaLotFilter{
		Selector: strings.TrimSpace(c.Query("selector")),
		Limit:    parseLimit(c.Query("limit")),
	}
	lots, err := h.Service.ListTeaLots(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, lots)
}

// CreateTeaLot godoc
// @Summary      Create a tea lot
// @Tags         tea-lots
// @Accept       json
// @Produce      json
// @Param        lot  body      CreateTeaLotRequest  true  "Tea lot"
// @Success      201  {object}  TeaLot
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      409  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /tea-lots [post]
func (h *Handler) CreateTeaLot(c *gin.Context) {
	var req CreateTeaLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	lot, err := h.Service.CreateTeaLot(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lot)
}

// GetTeaLot godoc
// @Summary      Get a tea lot
// @Tags         tea-lots
// @Produce      json
// @Param        id   path      int  true  "Tea lot ID"
// @Success      200  {object}  TeaLot
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /tea-lots/{id} [get]
func (h *Handler) GetTeaLot(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	lot, err := h.Service.GetTeaLot(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

// DeleteTeaLot godoc
// @Summary      Delete a tea lot
// @Tags         tea-lots
// @Param        id   path  int  true  "Tea lot ID"
// @Success      204
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /tea-lots/{id} [delete]
func (h *Handler) DeleteTeaLot(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Service.DeleteTeaLot(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BulkDeleteTeaLots godoc
// @Summary      Delete several tea lots
// @Description  Deletes the lots with the given ids; unknown ids are ignored
// @Tags         tea-lots
// @Accept       json
// @Produce      json
// @Param        ids  body      []int  true  "Tea lot IDs"
// @Success      200  {object}  BulkDeleteResponse
// @Failure      400  {object}  errors.ErrorResponse
// @Router       /tea-lots [delete]
func (h *Handler) BulkDeleteTeaLots(c *gin.Context) {
	var ids []int64
	if err := c.ShouldBindJSON(&ids); err != nil {
		h.badRequest(c, "body must be a JSON array of ids", err)
		return
	}
	n, err := h.Service.BulkDeleteTeaLots(c.Request.Context(), ids)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, BulkDeleteResponse{Deleted: n})
}

// ListRules godoc
// @Summary      List rules
// @Description  Rules in evaluation order
// @Tags         rules
// @Produce      json
// @Success      200  {array}   Rule
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /rules [get]
func (h *Handler) ListRules(c *gin.Context) {
	rules, err := h.Service.ListRules(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

// CreateRule godoc
// @Summary      Create a rule
// @Description  The DSL is compiled before the rule is stored
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        rule  body      CreateRuleRequest  true  "Rule"
// @Success      201   {object}  Rule
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      422   {object}  errors.ErrorResponse
// @Failure      500   {object}  errors.ErrorResponse
// @Router       /rules [post]
func (h *Handler) CreateRule(c *gin.Context) {
	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	rule, err := h.Service.CreateRule(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// GetRule godoc
// @Summary      Get a rule
// @Tags         rules
// @Produce      json
// @Param        id   path      int  true  "Rule ID"
// @Success      200  {object}  Rule
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /rules/{id} [get]
func (h *Handler) GetRule(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	rule, err := h.Service.GetRule(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// UpdateRule godoc
// @Summary      Update a rule
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Rule ID"
// @Param        rule  body      UpdateRuleRequest  true  "Fields to change"
// @Success      200   {object}  Rule
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      404   {object}  errors.ErrorResponse
// @Failure      422   {object}  errors.ErrorResponse
// @Router       /rules/{id} [put]
func (h *Handler) UpdateRule(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	rule, err := h.Service.UpdateRule(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// DeleteRule godoc
// @Summary      Delete a rule
// @Tags         rules
// @Param        id   path  int  true  "Rule ID"
// @Success      204
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /rules/{id} [delete]
func (h *Handler) DeleteRule(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Service.DeleteRule(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BulkDeleteRules godoc
// @Summary      Delete several rules
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        ids  body      []int  true  "Rule IDs"
// @Success      200  {object}  BulkDeleteResponse
// @Failure      400  {object}  errors.ErrorResponse
// @Router       /rules [delete]
func (h *Handler) BulkDeleteRules(c *gin.Context) {
	var ids []int64
	if err := c.ShouldBindJSON(&ids); err != nil {
		h.badRequest(c, "body must be a JSON array of ids", err)
		return
	}
	n, err := h.Service.BulkDeleteRules(c.Request.Context(), ids)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, BulkDeleteResponse{Deleted: n})
}

// GetRuleVersions godoc
// @Summary      List versions of a rule
// @Tags         versioning
// @Produce      json
// @Param        id   path      int  true  "Rule ID"
// @Success      200  {array}   RuleVersion
// @Failure      503  {object}  errors.ErrorResponse
// @Router       /rules/{id}/versions [get]
func (h *Handler) GetRuleVersions(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	versions, err := h.Service.GetRuleVersions(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, versions)
}

// GetRuleVersion godoc
// @Summary      Get one version of a rule
// @Tags         versioning
// @Produce      json
// @Param        id       path      int  true  "Rule ID"
// @Param        version  path      int  true  "Version number"
// @Success      200      {object}  RuleVersion
// @Failure      404      {object}  errors.ErrorResponse
// @Router       /rules/{id}/versions/{version} [get]
func (h *Handler) GetRuleVersion(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version <= 0 {
		h.badRequest(c, "invalid version", err)
		return
	}
	v, err := h.Service.GetRuleVersion(c.Request.Context(), id, version)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// GetRuleAuditLogs godoc
// @Summary      Audit log of a rule
// @Tags         audit
// @Produce      json
// @Param        id     path      int  true   "Rule ID"
// @Param        limit  query     int  false  "Maximum number of entries"
// @Success      200    {array}   AuditLog
// @Router       /rules/{id}/audit [get]
func (h *Handler) GetRuleAuditLogs(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	logs, err := h.Service.GetAuditLogs(c.Request.Context(), &id, parseLimit(c.Query("limit")))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// GetAuditLogs godoc
// @Summary      Audit logs
// @Tags         audit
// @Produce      json
// @Param        rule_id  query     int  false  "Only entries for this rule"
// @Param        limit    query     int  false  "Maximum number of entries"
// @Success      200      {array}   AuditLog
// @Failure      400      {object}  errors.ErrorResponse
// @Router       /audit-logs [get]
func (h *Handler) GetAuditLogs(c *gin.Context) {
	var ruleID *int64
	if raw := c.Query("rule_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.badRequest(c, "invalid rule_id", err)
			return
		}
		ruleID = &id
	}

	logs, err := h.Service.GetAuditLogs(c.Request.Context(), ruleID, parseLimit(c.Query("limit")))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// GetSelectorExamples godoc
// @Summary      Example tea lot selectors
// @Tags         tea-lots
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /selectors/examples [get]
func (h *Handler) GetSelectorExamples(c *gin.Context) {
	c.JSON(http.StatusOK, cel.SelectorExamples)
}

// ExportTeaLots godoc
// @Summary      Export all tea lots
// @Tags         import-export
// @Produce      json
// @Success      200  {array}  TeaLot
// @Router       /export/tea-lots [get]
func (h *Handler) ExportTeaLots(c *gin.Context) {
	lots, err := h.Service.ExportTeaLots(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	attachment(c, "tea-lots.json")
	c.JSON(http.StatusOK, lots)
}

// ExportRules godoc
// @Summary      Export all rules
// @Tags         import-export
// @Produce      json
// @Success      200  {array}  Rule
// @Router       /export/rules [get]
func (h *Handler) ExportRules(c *gin.Context) {
	rules, err := h.Service.ListRules(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	attachment(c, "rules.json")
	c.JSON(http.StatusOK, rules)
}

// ImportTeaLots godoc
// @Summary      Import tea lots
// @Description  All lots are stored or none are
// @Tags         import-export
// @Accept       json
// @Produce      json
// @Param        body  body      ImportTeaLotsRequest  true  "Lots to import"
// @Success      201   {object}  ImportTeaLotsResponse
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      409   {object}  errors.ErrorResponse
// @Router       /import/tea-lots [post]
func (h *Handler) ImportTeaLots(c *gin.Context) {
	var req ImportTeaLotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}
	resp, err := h.Service.ImportTeaLots(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ImportRules godoc
// @Summary      Import rules
// @Description  Every DSL is compiled first; all rules are stored or none are
// @Tags         import-export
// @Accept       json
// @Produce      json
// @Param        body  body      ImportRulesRequest  true  "Rules to import"
// @Success      201   {object}  ImportRulesResponse
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      422   {object}  errors.ErrorResponse
// @Router       /import/rules [post]
func (h *Handler) ImportRules(c *gin.Context) {
	var req ImportRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}
	resp, err := h.Service.ImportRules(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BaseHandler) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := ParseID(c.Param(name))
	if err != nil {
		h.badRequest(c, fmt.Sprintf("invalid %s", name), err)
		return 0, false
	}
	return id, true
}

// ParseID accepts positive decimal ids only.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive, got %d", id)
	}
	return id, nil
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
}

func parseLimit(limitStr string) int {
	if limitStr == "" {
		return constants.DefaultLimit
	}
	parsed, err := strconv.Atoi(limitStr)
	if err != nil || parsed <= 0 || parsed > constants.MaxLimit {
		return constants.DefaultLimit
	}
	return parsed
}

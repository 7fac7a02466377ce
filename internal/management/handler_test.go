package management

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teagate/internal/logger"
)

func newTestRouter(t *testing.T) (*gin.Engine, serviceFixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := newServiceFixture(t)
	router := gin.New()
	NewHandler(f.svc, logger.NopLogger()).RegisterRoutes(router)
	return router, f
}

func doJSON(router http.Handler, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_TeaLotLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/tea-lots", validLot("LOT-2026-001"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created TeaLot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "LOT-2026-001", created.LotCode)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Contains(t, raw, "pesticideLevel")
	assert.Contains(t, raw, "aromaScore")

	w = doJSON(router, http.MethodGet, "/api/v1/tea-lots/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/v1/tea-lots/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/tea-lots/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_InvalidID(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/api/v1/tea-lots/abc", "/api/v1/rules/-1", "/api/v1/rules/0/versions"} {
		w := doJSON(router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestHandler_CreateTeaLot_Validation(t *testing.T) {
	router, _ := newTestRouter(t)

	req := validLot("LOT-1")
	req.Moisture = 120
	w := doJSON(router, http.MethodPost, "/api/v1/tea-lots", req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body["error_code"])
	details := body["details"].(map[string]interface{})
	assert.Equal(t, "moisture must be between 0.0 and 100.0", details["message"])
}

func TestHandler_CreateTeaLot_Conflict(t *testing.T) {
	router, _ := newTestRouter(t)

	require.Equal(t, http.StatusCreated, doJSON(router, http.MethodPost, "/api/v1/tea-lots", validLot("DUP")).Code)
	w := doJSON(router, http.MethodPost, "/api/v1/tea-lots", validLot("DUP"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_ListTeaLots_Selector(t *testing.T) {
	router, _ := newTestRouter(t)

	wet := validLot("WET")
	wet.Moisture = 9.9
	doJSON(router, http.MethodPost, "/api/v1/tea-lots", wet)
	doJSON(router, http.MethodPost, "/api/v1/tea-lots", validLot("DRY"))

	w := doJSON(router, http.MethodGet, "/api/v1/tea-lots?selector=moisture%20%3E%209.0", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var lots []TeaLot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lots))
	require.Len(t, lots, 1)
	assert.Equal(t, "WET", lots[0].LotCode)
}

func TestHandler_BulkDelete(t *testing.T) {
	router, _ := newTestRouter(t)

	doJSON(router, http.MethodPost, "/api/v1/tea-lots", validLot("A"))
	doJSON(router, http.MethodPost, "/api/v1/tea-lots", validLot("B"))

	w := doJSON(router, http.MethodDelete, "/api/v1/tea-lots", []int64{1, 2, 3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":2}`, w.Body.String())

	w = doJSON(router, http.MethodDelete, "/api/v1/tea-lots", map[string]int{"id": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_CreateRule_InvalidDSL(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/rules", map[string]string{
		"name": "broken",
		"dsl":  `rule("broken") { whenMoisture { 9.0 } then BLOCK }`,
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_RULE", body["error_code"])
	assert.Equal(t, "missing-operator", body["details"].(map[string]interface{})["reason"])
}

func TestHandler_RuleLifecycle(t *testing.T) {
	router, f := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/rules",
		map[string]string{"name": "Moisture Check", "dsl": moistureDSL},
		HeaderChangedBy, "alice", HeaderChangeReason, "initial gate")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var rule map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rule))
	assert.Equal(t, "BLOCK", rule["severity"])

	w = doJSON(router, http.MethodPut, "/api/v1/rules/1", map[string]string{"severity": "INFO"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rule))
	assert.Equal(t, "INFO", rule["severity"])

	w = doJSON(router, http.MethodGet, "/api/v1/rules/1/versions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var versions []RuleVersion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &versions))
	assert.Len(t, versions, 2)

	w = doJSON(router, http.MethodGet, "/api/v1/rules/1/versions/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(router, http.MethodGet, "/api/v1/rules/1/versions/9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/audit-logs?rule_id=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logs []AuditLog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	require.Len(t, logs, 2)
	assert.Equal(t, "alice", logs[0].ChangedBy)
	assert.Equal(t, "initial gate", logs[0].ChangeReason)
	assert.Equal(t, "system", logs[1].ChangedBy)

	w = doJSON(router, http.MethodDelete, "/api/v1/rules/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, f.producer.actions(), 3)
}

func TestHandler_ExportImport(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/import/tea-lots", ImportTeaLotsRequest{
		TeaLots: []CreateTeaLotRequest{validLot("A"), validLot("B")},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var imported ImportTeaLotsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &imported))
	assert.Equal(t, 2, imported.Imported)

	w = doJSON(router, http.MethodGet, "/api/v1/export/tea-lots", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="tea-lots.json"`, w.Header().Get("Content-Disposition"))
	var lots []TeaLot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lots))
	assert.Len(t, lots, 2)

	w = doJSON(router, http.MethodPost, "/api/v1/import/rules", ImportRulesRequest{
		Rules: []CreateRuleRequest{{Name: "Moisture Check", DSL: moistureDSL}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(router, http.MethodGet, "/api/v1/export/rules", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="rules.json"`, w.Header().Get("Content-Disposition"))

	w = doJSON(router, http.MethodPost, "/api/v1/import/rules", ImportRulesRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_SelectorExamples(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/v1/selectors/examples", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var examples map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &examples))
	assert.Contains(t, examples, "wet_lots")
}

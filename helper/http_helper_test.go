package helper

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"app-registry-cms/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code        int             `json:"code"`
	CodeType    string          `json:"code_type"`
	CodeMessage json.RawMessage `json:"code_message"`
}

func sendFor(t *testing.T, err error) (*httptest.ResponseRecorder, envelope) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h := &HTTPHelper{}
	require.NoError(t, h.SendServiceError(c, err))

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestSendServiceErrorMapsDomainErrors(t *testing.T) {
	cases := []struct {
		err      error
		status   int
		codeType string
	}{
		{models.ErrNotFound, http.StatusNotFound, "notFound"},
		{models.ErrForbidden, http.StatusForbidden, "forbidden"},
		{models.ErrBanned, http.StatusForbidden, "forbidden"},
		{models.ErrConflict, http.StatusConflict, "conflict"},
		{models.ErrNotDraft, http.StatusBadRequest, "badRequest"},
		{errors.New("connection reset"), http.StatusInternalServerError, "databaseError"},
	}

	for _, tc := range cases {
		w, env := sendFor(t, tc.err)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.Equal(t, tc.codeType, env.CodeType, tc.err.Error())
	}
}

func TestSendServiceErrorValidation(t *testing.T) {
	verr := models.NewValidationError()
	verr.Add("agencies", "Agencies must contain at least 1 item")

	w, env := sendFor(t, verr)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, codeValidationError, env.Code)

	var fields map[string][]string
	require.NoError(t, json.Unmarshal(env.CodeMessage, &fields))
	assert.Equal(t, []string{"Agencies must contain at least 1 item"}, fields["agencies"])
}

func TestGeneratePaging(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/mobile_apps", nil)

	h := &HTTPHelper{}
	paging := h.GeneratePaging(c, 10, 2, 35)

	assert.Equal(t, 4, paging["total_pages"])
	links := paging["links"].(map[string]interface{})
	assert.Equal(t, "http://example.com/api/v1/mobile_apps?page=1&limit=10", links["previous"])
	assert.Equal(t, "http://example.com/api/v1/mobile_apps?page=3&limit=10", links["next"])
	assert.Equal(t, "http://example.com/api/v1/mobile_apps?page=4&limit=10", links["last"])
}

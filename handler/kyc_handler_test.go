package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/kyc-document-verification/config"
	"github.com/Aashish23092/kyc-document-verification/dto"
	"github.com/Aashish23092/kyc-document-verification/service"
)

func document() map[string]string {
	return map[string]string{
		"full_name":        "Rahul Kumar Sharma",
		"fathers_name":     "Suresh Sharma",
		"date_of_birth":    "15-08-1995",
		"complete_address": "12, MG Road, Pune",
		"phone_number":     "+91 98765 43210",
		"email_address":    "rahul@example.com",
		"aadhaar_number":   "1234 5678 9012",
		"pan_number":       "ABCDE1234F",
		"employee_id":      "EMP-1042",
		"account_number":   "123456789012",
	}
}

func fixtureFields() dto.ExtractedFields {
	fields := dto.NewExtractedFields()
	for k, v := range document() {
		fields[dto.FieldName(k)] = v
	}
	return fields
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	extractor := service.StaticExtractor{Fields: map[string]dto.ExtractedFields{
		"aadhaar.png": fixtureFields(),
		"pan.jpg":     fixtureFields(),
	}}
	svc := service.NewKYCService(service.NewValidator(config.DefaultRules()), extractor, nil, nil, 2)
	h := NewKYCHandler(svc, 1<<20, 3)

	router := gin.New()
	router.Use(RequestID())
	router.POST("/api/v1/kyc/verify", h.Verify)
	router.POST("/api/v1/kyc/extract", h.Extract)
	return router
}

func TestVerify(t *testing.T) {
	router := setupRouter()

	payload, err := json.Marshal([]map[string]any{{
		"person_id": "P001",
		"documents": []map[string]string{document(), document()},
	}})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/kyc/verify", bytes.NewReader(payload))
	req.Header.Set("X-Request-ID", "req-123")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	var results []dto.PersonResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "P001", results[0].PersonID)
	assert.Equal(t, dto.StatusVerified, results[0].OverallStatus)
	assert.Len(t, results[0].VerificationResults, len(dto.AllRules))
}

func TestVerifyInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `[{"person_id": `},
		{"non-string value", `[{"person_id": "P001", "documents": [{"phone_number": 9876543210}]}]`},
		{"no documents", `[{"person_id": "P001", "documents": []}]`},
		{"missing field", `[{"person_id": "P001", "documents": [{"full_name": "A"}]}]`},
	}

	router := setupRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/kyc/verify", strings.NewReader(tt.body))
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "INVALID_INPUT", resp.Error)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
}

func multipartBody(t *testing.T, personID string, files ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	if personID != "" {
		require.NoError(t, writer.WriteField("person_id", personID))
	}
	for _, name := range files {
		part, err := writer.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestExtract(t *testing.T) {
	router := setupRouter()
	body, contentType := multipartBody(t, "P001", "aadhaar.png", "pan.jpg")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/kyc/extract", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result dto.PersonResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "P001", result.PersonID)
	assert.Len(t, result.ExtractedData, 2)
	assert.Equal(t, dto.StatusVerified, result.OverallStatus)
}

func TestExtractInvalidRequests(t *testing.T) {
	tests := []struct {
		name     string
		personID string
		files    []string
	}{
		{"missing person id", "", []string{"aadhaar.png"}},
		{"no files", "P001", nil},
		{"too many files", "P001", []string{"a.png", "b.png", "c.png", "d.png"}},
		{"unsupported type", "P001", []string{"notes.txt"}},
	}

	router := setupRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tt.personID, tt.files...)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/kyc/extract", body)
			req.Header.Set("Content-Type", contentType)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "INVALID_INPUT", resp.Error)
		})
	}
}

func TestExtractNotMultipart(t *testing.T) {
	router := setupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/kyc/extract", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

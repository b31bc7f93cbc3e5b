package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppulse/internal/config"
	"shoppulse/internal/services"
)

const sampleCSV = "query,title,lprice,mall_name\n" +
	"캄프 카밍패드,캄프 카밍패드 70매,15000,m1.example.com\n" +
	"캄프 카밍패드,캄프 카밍패드 70매,21000,m2.example.com\n" +
	"캄프 카밍패드,캄프 카밍패드 70매,23000,m3.example.com\n" +
	"캄프 카밍패드,캄프 카밍패드 70매 2팩,40000,m4.example.com\n"

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{
			MaxUploadBytes: 1 << 20,
			RateLimitRPS:   100,
			RateLimitBurst: 100,
		},
		Pipeline: config.PipelineConfig{
			Query:         "캄프 카밍패드",
			Method:        services.MethodIQR,
			GroupCols:     []string{"query"},
			AuxPct:        50,
			UpperQuantile: 0.75,
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := services.NewAnalysisService(cfg.Pipeline, nil, logger)
	return NewRouter(cfg, svc, logger)
}

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAnalyzeEndpoint_CSVUpload(t *testing.T) {
	router := testRouter(t)

	body, contentType := multipartBody(t, "batch.csv", sampleCSV, map[string]string{
		"method": "iqr",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var result services.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 4, result.TotalRecords)
	assert.Len(t, result.Kept, 3)
	assert.Len(t, result.Excluded, 1)
}

func TestAnalyzeEndpoint_JSONUpload(t *testing.T) {
	router := testRouter(t)

	batch := `[
		{"query":"캄프 카밍패드","title":"캄프 카밍패드 70매","lprice":15000,"mallName":"m1"},
		{"query":"캄프 카밍패드","title":"캄프 카밍패드 70매","lprice":21000,"mallName":"m2"}
	]`
	body, contentType := multipartBody(t, "batch.json", batch, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result services.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 2, result.TotalRecords)
}

func TestAnalyzeEndpoint_MissingFile(t *testing.T) {
	router := testRouter(t)

	body, contentType := multipartBody(t, "", "", map[string]string{"method": "iqr"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing batch file")
}

func TestAnalyzeEndpoint_UnsupportedFormat(t *testing.T) {
	router := testRouter(t)

	body, contentType := multipartBody(t, "batch.txt", "not a table", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported upload format")
}

func TestAnalyzeEndpoint_BadOptionValue(t *testing.T) {
	router := testRouter(t)

	body, contentType := multipartBody(t, "batch.csv", sampleCSV, map[string]string{
		"aux_pct": "lots",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "aux_pct")
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

package http

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/render"

	apperrors "shoppulse/internal/errors"
	"shoppulse/internal/ingest"
	"shoppulse/internal/pipeline"
	"shoppulse/internal/services"
)

// AnalysisHandler serves the batch analysis endpoint.
type AnalysisHandler struct {
	service        *services.AnalysisService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewAnalysisHandler creates the analysis handler.
func NewAnalysisHandler(service *services.AnalysisService, maxUploadBytes int64, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("handler", "analysis")),
	}
}

// Analyze handles POST /api/v1/analyze. The request is a multipart form
// with the batch under "file" and the analysis options as form fields.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		apperrors.WriteError(w, r, apperrors.NewValidationError(
			fmt.Sprintf("invalid multipart request: %v", err)))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apperrors.WriteError(w, r, apperrors.NewValidationError("missing batch file upload"))
		return
	}
	defer file.Close()

	table, err := readUpload(file, header.Filename)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to parse upload",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		apperrors.WriteError(w, r, err)
		return
	}

	req, err := requestFromForm(r)
	if err != nil {
		apperrors.WriteError(w, r, err)
		return
	}

	result, err := h.service.Analyze(ctx, table, req)
	if err != nil {
		apperrors.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

// readUpload parses the uploaded batch by its filename extension.
func readUpload(file multipart.File, filename string) (pipeline.Table, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		table, err := ingest.ReadCSV(file)
		if err != nil {
			return pipeline.Table{}, apperrors.NewParsingError("parse CSV upload", err)
		}
		return table, nil
	case ".json":
		table, err := ingest.ReadJSON(file)
		if err != nil {
			return pipeline.Table{}, apperrors.NewParsingError("parse JSON upload", err)
		}
		return table, nil
	case ".xlsx":
		table, err := ingest.ReadExcel(file)
		if err != nil {
			return pipeline.Table{}, apperrors.NewParsingError("parse Excel upload", err)
		}
		return table, nil
	default:
		return pipeline.Table{}, apperrors.NewValidationError(
			fmt.Sprintf("unsupported upload format: %q", ext))
	}
}

// requestFromForm builds the analysis request from the multipart form
// fields. Absent fields stay zero so the service applies its defaults.
func requestFromForm(r *http.Request) (services.AnalysisRequest, error) {
	req := services.AnalysisRequest{
		Query:  r.FormValue("query"),
		Method: r.FormValue("method"),
	}

	if v := r.FormValue("group_cols"); v != "" {
		for _, col := range strings.Split(v, ",") {
			if col = strings.TrimSpace(col); col != "" {
				req.GroupCols = append(req.GroupCols, col)
			}
		}
	}

	var err error
	if req.IncludeVariants, err = formBool(r, "include_variants"); err != nil {
		return req, err
	}
	if req.UseAux, err = formBool(r, "use_aux"); err != nil {
		return req, err
	}
	if req.AuxPct, err = formFloat(r, "aux_pct"); err != nil {
		return req, err
	}
	if req.UpperQuantile, err = formFloat(r, "upper_quantile"); err != nil {
		return req, err
	}
	return req, nil
}

func formBool(r *http.Request, field string) (bool, error) {
	v := r.FormValue(field)
	if v == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, apperrors.NewValidationError(
			fmt.Sprintf("invalid boolean for %s: %q", field, v))
	}
	return parsed, nil
}

func formFloat(r *http.Request, field string) (float64, error) {
	v := r.FormValue(field)
	if v == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, apperrors.NewValidationError(
			fmt.Sprintf("invalid number for %s: %q", field, v))
	}
	return parsed, nil
}

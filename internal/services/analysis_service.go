package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"shoppulse/internal/config"
	apperrors "shoppulse/internal/errors"
	"shoppulse/internal/pipeline"
)

// MethodIQR and MethodQuantile name the supported detection strategies.
const (
	MethodIQR      = "iqr"
	MethodQuantile = "quantile"
)

// AnalysisRequest carries the caller's analysis parameters. Zero values
// fall back to the configured pipeline defaults.
type AnalysisRequest struct {
	Query           string   `json:"query"`
	Method          string   `json:"method" validate:"omitempty,oneof=iqr quantile"`
	GroupCols       []string `json:"group_cols"`
	IncludeVariants bool     `json:"include_variants"`
	UseAux          bool     `json:"use_aux"`
	AuxPct          float64  `json:"aux_pct" validate:"gte=0,lte=100"`
	UpperQuantile   float64  `json:"upper_quantile" validate:"gte=0,lte=1"`
}

// AnalysisResult is the full output of one analysis run.
type AnalysisResult struct {
	RunID        string                      `json:"run_id"`
	Query        string                      `json:"query"`
	Method       string                      `json:"method"`
	TotalRecords int                         `json:"total_records"`
	ModalSize    *int                        `json:"modal_size"`
	Kept         []pipeline.ClassifiedRecord `json:"kept"`
	Excluded     []pipeline.ClassifiedRecord `json:"excluded"`
	Detection    pipeline.DetectResult       `json:"detection"`
	Summary      []pipeline.SellerSummary    `json:"seller_summary"`
	Duration     time.Duration               `json:"duration_ns"`
}

// AnalysisService runs the full pipeline over a raw table.
type AnalysisService struct {
	defaults config.PipelineConfig
	validate *validator.Validate
	metrics  *Metrics
	logger   *slog.Logger
}

// NewAnalysisService creates an analysis service with the given pipeline
// defaults. A nil metrics disables counting; a nil logger uses the
// default logger.
func NewAnalysisService(defaults config.PipelineConfig, metrics *Metrics, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		defaults: defaults,
		validate: validator.New(),
		metrics:  metrics,
		logger:   logger,
	}
}

// Analyze validates the request, applies defaults and runs the pipeline
// stages in order over the raw table.
func (s *AnalysisService) Analyze(ctx context.Context, table pipeline.Table, req AnalysisRequest) (*AnalysisResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid analysis request: %v", err))
	}
	req = s.applyDefaults(req)

	runID := uuid.New().String()
	start := time.Now()

	s.logger.InfoContext(ctx, "analysis started",
		slog.String("run_id", runID),
		slog.String("query", req.Query),
		slog.String("method", req.Method),
		slog.Int("rows", table.NumRows()))

	products := pipeline.ResolveSellers(pipeline.Normalize(table))

	classified := pipeline.Classify(products, pipeline.ClassifyOptions{
		Query:           req.Query,
		IncludeVariants: req.IncludeVariants,
	})

	detectOpts := pipeline.DetectOptions{
		GroupCols:     req.GroupCols,
		UseAux:        req.UseAux,
		AuxPct:        req.AuxPct,
		UpperQuantile: req.UpperQuantile,
	}
	var detection pipeline.DetectResult
	switch req.Method {
	case MethodQuantile:
		detection = pipeline.DetectOutliersQuantile(classified.Kept, detectOpts)
	default:
		detection = pipeline.DetectOutliersIQR(classified.Kept, detectOpts)
	}

	summary := pipeline.BuildSellerSummary(detection.Annotated)

	result := &AnalysisResult{
		RunID:        runID,
		Query:        req.Query,
		Method:       req.Method,
		TotalRecords: len(products),
		ModalSize:    classified.ModalSize,
		Kept:         classified.Kept,
		Excluded:     classified.Excluded,
		Detection:    detection,
		Summary:      summary,
		Duration:     time.Since(start),
	}

	if s.metrics != nil {
		s.metrics.AnalysesTotal.WithLabelValues(req.Method).Inc()
		s.metrics.RecordsProcessedTotal.Add(float64(len(products)))
		s.metrics.OutliersDetectedTotal.Add(float64(len(detection.Outliers)))
	}

	s.logger.InfoContext(ctx, "analysis finished",
		slog.String("run_id", runID),
		slog.Int("kept", len(classified.Kept)),
		slog.Int("excluded", len(classified.Excluded)),
		slog.Int("outliers", len(detection.Outliers)),
		slog.Duration("duration", result.Duration))

	return result, nil
}

// applyDefaults fills zero-valued request fields from the configured
// pipeline defaults.
func (s *AnalysisService) applyDefaults(req AnalysisRequest) AnalysisRequest {
	if req.Query == "" {
		req.Query = s.defaults.Query
	}
	if req.Method == "" {
		req.Method = s.defaults.Method
	}
	if req.Method == "" {
		req.Method = MethodIQR
	}
	if req.GroupCols == nil {
		req.GroupCols = s.defaults.GroupCols
	}
	if req.AuxPct == 0 {
		req.AuxPct = s.defaults.AuxPct
	}
	if req.UpperQuantile == 0 {
		req.UpperQuantile = s.defaults.UpperQuantile
	}
	return req
}

// Package services orchestrates the analysis pipeline: normalization,
// seller resolution, match classification, outlier detection and the
// seller summary, with request validation and Prometheus metrics.
package services

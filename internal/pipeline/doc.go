// Package pipeline implements the product-data normalization and
// outlier-filtering pipeline for shopping search results.
//
// The pipeline is a chain of pure, stage-by-stage transformations over an
// in-memory batch:
//
//	Table -> Normalize -> ResolveSellers -> Classify -> DetectOutliersIQR/Quantile -> BuildSellerSummary
//
// Every stage returns freshly derived data and never mutates its input, so
// independent batches can be processed concurrently. Stages do not return
// errors: malformed or missing data degrades to empty, zero or nil values
// and the caller interprets the result.
package pipeline

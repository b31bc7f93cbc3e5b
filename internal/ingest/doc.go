// Package ingest loads raw product batches from CSV, JSON and Excel
// sources into the pipeline's tabular form. It performs no schema
// normalization; column names are passed through as found and the
// pipeline's Column Normalizer maps them onto the standard schema.
package ingest

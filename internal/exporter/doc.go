// Package exporter writes analysis reports to disk as CSV files and
// Excel workbooks. CSV files carry a UTF-8 BOM so Excel renders Korean
// product names correctly.
package exporter

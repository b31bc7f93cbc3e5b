// Package http wires the chi router and the API handlers: batch upload
// and analysis, health and Prometheus metrics.
package http

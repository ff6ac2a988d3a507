// Package handler holds shared constants and interfaces for the web handler
// services registered on the Fiber app.
package handler

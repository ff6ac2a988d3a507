// Package main provides the entry point for the inkpress publishing backend.
// It initializes and runs a web server using the Fiber framework that exposes
// a REST API for user accounts, content posts and a role-based authorization
// layer with an approval workflow for role elevation. The application uses
// gorm for data persistence and session-cookie based authentication.
package main

// Package tests holds shared test doubles (tests/mocks) and the PostgreSQL
// integration suites (tests/integration, build tag "integration").
package tests

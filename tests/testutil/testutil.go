package testutil

import (
	"os"
	"testing"
)

// RequireTestEnvironment fails the test unless GO_ENV=test. Suites that
// touch DATABASE_URL or other process-wide state call this first so a
// stray run can never point at a development database.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	if env := os.Getenv("GO_ENV"); env != "test" {
		t.Fatalf("tests must run with GO_ENV=test (current: %q)", env)
	}
}

// MustSetTestEnvironment forces GO_ENV=test for the current process. Used
// from TestMain functions that want the guard without requiring callers to
// export the variable themselves.
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()

	if err := os.Setenv("GO_ENV", "test"); err != nil {
		t.Fatalf("failed to set GO_ENV=test: %v", err)
	}
}

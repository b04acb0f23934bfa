package testutil

import (
	"fmt"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/carbuapp/oficina-api/logger"
)

const testEnv = "test"

// EnsureTestEnv sets GO_ENV=test when it is unset. Any other value is an
// error: tests open and migrate databases and must never run against a
// development or production configuration.
func EnsureTestEnv() error {
	switch env := os.Getenv("GO_ENV"); env {
	case testEnv:
		return nil
	case "":
		return os.Setenv("GO_ENV", testEnv)
	default:
		return fmt.Errorf("tests must run with GO_ENV=test, got GO_ENV=%q", env)
	}
}

// RunMain is the shared TestMain body: it enforces the test environment,
// silences the process logger and runs the package's tests.
//
//	func TestMain(m *testing.M) { os.Exit(testutil.RunMain(m)) }
func RunMain(m *testing.M) int {
	if err := EnsureTestEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "SAFETY CHECK FAILED:", err)
		return 1
	}
	logger.Set(zap.NewNop())
	return m.Run()
}

// RequireTestEnvironment fails the test unless GO_ENV=test.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()
	if env := os.Getenv("GO_ENV"); env != testEnv {
		t.Fatalf("SAFETY CHECK FAILED: tests must run with GO_ENV=test, got GO_ENV=%q", env)
	}
}

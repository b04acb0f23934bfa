package config_test

import (
	"os"
	"testing"

	"github.com/carbuapp/oficina-api/tests/testutil"
)

func TestMain(m *testing.M) {
	os.Exit(testutil.RunMain(m))
}

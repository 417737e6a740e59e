package testlogger

import (
	"os"
	"testing"

	"github.com/drand/cbcsuite/common/log"
)

// Level returns DebugLevel when CBCSUITE_TEST_LOGS=DEBUG, InfoLevel otherwise.
func Level(t testing.TB) int {
	if lvl, ok := os.LookupEnv("CBCSUITE_TEST_LOGS"); ok && lvl == "DEBUG" {
		t.Log("Enabling DebugLevel logs")
		return log.DebugLevel
	}
	return log.InfoLevel
}

// New returns a logger tagged with the running test's name.
func New(t testing.TB) log.Logger {
	return log.New(nil, Level(t), true).With("testName", t.Name())
}

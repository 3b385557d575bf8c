package store

import (
	"io"
	"os"
	"testing"

	"github.com/vanderheijden86/procmap/pkg/debug"
)

func TestMain(m *testing.M) {
	// Malformed slots log an operator error on load.
	debug.SetOutput(io.Discard)
	os.Exit(m.Run())
}

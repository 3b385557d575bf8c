package layout

import (
	"io"
	"os"
	"testing"

	"github.com/vanderheijden86/procmap/pkg/debug"
)

func TestMain(m *testing.M) {
	debug.SetOutput(io.Discard)
	os.Exit(m.Run())
}

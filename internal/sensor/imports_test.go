package sensor

import (
	"go/build"
	"strings"
	"testing"
)

// The debouncer and the game modes import this package; it must build
// without libportaudio.
func TestNoAudioDeviceImports(t *testing.T) {
	pkg, err := build.ImportDir(".", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(pkg.CgoFiles) > 0 {
		t.Errorf("cgo files in package sensor: %v", pkg.CgoFiles)
	}
	for _, imp := range pkg.Imports {
		if strings.Contains(imp, "portaudio") {
			t.Errorf("package sensor imports %s", imp)
		}
	}
}

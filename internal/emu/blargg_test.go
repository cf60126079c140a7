package emu

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
)

// collectTestROMs walks dir and returns every .gb/.gbc file found, recursively.
func collectTestROMs(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		low := strings.ToLower(d.Name())
		if strings.HasSuffix(low, ".gb") || strings.HasSuffix(low, ".gbc") {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

// runSerialTestROM boots romPath on a fresh headless Machine and watches its
// serial port for a blargg-style "Passed"/"Failed" banner, failing the test
// on an explicit failure report or on exhausting frameBudget frames.
func runSerialTestROM(t *testing.T, romPath string, frameBudget int) {
	t.Helper()
	m := New(Config{})

	var serial bytes.Buffer
	if err := m.LoadROMFromFile(romPath); err != nil {
		t.Fatalf("load ROM: %v", err)
	}
	// SetSerialWriter must follow LoadROMFromFile since loading rebuilds the Bus.
	m.SetSerialWriter(&serial)

	for frame := 0; frame < frameBudget; frame++ {
		m.StepFrameNoRender()
		out := serial.String()
		if strings.Contains(out, "Passed") || strings.Contains(out, "passed") {
			return
		}
		if strings.Contains(out, "Failed") || strings.Contains(out, "failed") {
			t.Fatalf("%s reported failure via serial after %d frames:\n%s", filepath.Base(romPath), frame, out)
		}
	}
	t.Fatalf("%s: no serial 'Passed' within %d frames; last output:\n%s", filepath.Base(romPath), frameBudget, serial.String())
}

// findModuleRoot walks up from this source file looking for go.mod, falling
// back to the process's working directory if that search fails.
func findModuleRoot() string {
	if _, file, _, ok := runtime.Caller(0); ok {
		dir := filepath.Dir(file)
		for {
			if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
				return dir
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// TestSerialConformanceSuite runs every ROM under testroms/blargg (or
// BLARGG_ROM_DIR) through runSerialTestROM. Opt-in only: these suites take
// real wall-clock time to converge, so default `go test` skips them.
func TestSerialConformanceSuite(t *testing.T) {
	if os.Getenv("RUN_SERIAL_CONFORMANCE") == "" {
		t.Skip("set RUN_SERIAL_CONFORMANCE=1 and place ROMs under testroms/blargg (or set BLARGG_ROM_DIR) to run")
	}

	base := os.Getenv("BLARGG_ROM_DIR")
	if base == "" {
		base = filepath.Join(findModuleRoot(), "testroms", "blargg")
	}
	if _, err := os.Stat(base); err != nil {
		t.Skipf("conformance ROM dir missing: %s", base)
	}

	roms, err := collectTestROMs(base)
	if err != nil {
		t.Fatalf("scan ROMs: %v", err)
	}
	if len(roms) == 0 {
		t.Skipf("no ROMs found under %s", base)
	}

	frameBudget := 2400
	if v := os.Getenv("SERIAL_CONFORMANCE_MAX_FRAMES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			frameBudget = n
		}
	}

	for _, rom := range roms {
		rom := rom
		name := strings.TrimSuffix(filepath.Base(rom), filepath.Ext(rom))
		t.Run(name, func(t *testing.T) { runSerialTestROM(t, rom, frameBudget) })
	}
}

package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/joshuapare/regrun/internal/config"
	"github.com/joshuapare/regrun/internal/expand"
	"github.com/joshuapare/regrun/internal/testutil/fakereg"
	"github.com/joshuapare/regrun/pkg/types"
)

// useFakeRegistry points every command at an in-memory registry whose
// expander sees env, and resets flags and settings.
func useFakeRegistry(t *testing.T, env map[string]string) *fakereg.Registry {
	t.Helper()

	reg := fakereg.New()
	origRegistry, origExpander, origSettings, origFile := newRegistry, expander, settings, settingsFile
	t.Cleanup(func() {
		newRegistry, expander, settings, settingsFile = origRegistry, origExpander, origSettings, origFile
	})

	lookup := expand.MapLookup(env)
	newRegistry = func() types.Registry { return reg }
	expander = func(s string) (string, bool) { return expand.Expand(s, lookup) }
	settings, settingsFile = config.DefaultConfig(), ""

	verbose, bestEffort, dedupe, configPath = false, false, false, ""
	pathSplit, valuesReg, envDotenv = false, false, false
	return reg
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe
	os.Stdout = w

	// Drain concurrently so large output cannot fill the pipe
	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		defer close(done)
		_, _ = buf.ReadFrom(r)
	}()

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout
	<-done

	return buf.String(), fnErr
}

// captureStderr captures stderr while running a function
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()

	origStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stderr = w

	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		defer close(done)
		_, _ = buf.ReadFrom(r)
	}()

	fn()

	w.Close()
	os.Stderr = origStderr
	<-done

	return buf.String()
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// assertNotContains checks that output doesn't contain unwanted strings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, dont := range unwanted {
		if strings.Contains(output, dont) {
			t.Errorf("output contains unwanted string %q\nGot: %s", dont, output)
		}
	}
}

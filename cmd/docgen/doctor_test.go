package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckProviders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		def        string
		configured []string
		wantWarn   string
	}{
		{"none configured", "gemini", nil, "No content provider configured"},
		{"default without key", "gemini", []string{"openai"}, `Default provider "gemini" has no API key`},
		{"default configured", "Gemini", []string{"gemini", "openai"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &doctorResult{Providers: providerInfo{Default: tt.def, Configured: tt.configured}}
			checkProviders(r)

			if tt.wantWarn == "" {
				if len(r.Warnings) != 0 {
					t.Errorf("Warnings = %v, want none", r.Warnings)
				}
				return
			}
			if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0], tt.wantWarn) {
				t.Errorf("Warnings = %v, want %q", r.Warnings, tt.wantWarn)
			}
		})
	}
}

func TestCheckSystem(t *testing.T) {
	t.Parallel()

	r := &doctorResult{}
	dir := filepath.Join(t.TempDir(), "not-yet-created")
	checkSystem(r, dir)

	if !r.System.TempWritable || !r.System.ArtifactWritable {
		t.Errorf("System = %+v, want writable", r.System)
	}
	if len(r.Errors) != 0 {
		t.Errorf("Errors = %v", r.Errors)
	}
}

func TestPrintDoctorResult(t *testing.T) {
	t.Parallel()

	r := &doctorResult{
		Status:    statusWarnings,
		Backend:   "native",
		Providers: providerInfo{Default: "openai", Configured: []string{"openai"}},
		Warnings:  []string{"Chrome/Chromium not found"},
	}
	var buf bytes.Buffer
	printDoctorResult(&buf, r)

	out := buf.String()
	for _, want := range []string{"Backend: native", "Configured: openai", "[WARN] Chrome/Chromium not found", "Ready with warnings"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

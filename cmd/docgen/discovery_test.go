package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "a.txt"), "A")
	mustWrite(t, filepath.Join(dir, "notes.md"), "B")
	mustWrite(t, filepath.Join(dir, "sub", "c.TEXT"), "C")
	mustWrite(t, filepath.Join(dir, "image.png"), "x")

	t.Run("directory walk keeps text files only", func(t *testing.T) {
		t.Parallel()

		files, err := discoverFiles(dir, "")
		if err != nil {
			t.Fatalf("discoverFiles() error = %v", err)
		}
		if len(files) != 3 {
			t.Fatalf("got %d files, want 3: %+v", len(files), files)
		}
		want := filepath.Join(dir, "sub", "c.pdf")
		found := false
		for _, f := range files {
			if f.OutputPath == want {
				found = true
			}
		}
		if !found {
			t.Errorf("nested output %q missing from %+v", want, files)
		}
	})

	t.Run("output directory mirrors layout", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "out")
		files, err := discoverFiles(dir, out)
		if err != nil {
			t.Fatalf("discoverFiles() error = %v", err)
		}
		for _, f := range files {
			if filepath.Base(f.InputPath) == "c.TEXT" && f.OutputPath != filepath.Join(out, "sub", "c.pdf") {
				t.Errorf("OutputPath = %q", f.OutputPath)
			}
		}
	})

	t.Run("single file", func(t *testing.T) {
		t.Parallel()

		files, err := discoverFiles(filepath.Join(dir, "a.txt"), "")
		if err != nil {
			t.Fatalf("discoverFiles() error = %v", err)
		}
		if len(files) != 1 || files[0].OutputPath != filepath.Join(dir, "a.pdf") {
			t.Errorf("files = %+v", files)
		}
	})

	t.Run("single file with wrong extension", func(t *testing.T) {
		t.Parallel()

		_, err := discoverFiles(filepath.Join(dir, "image.png"), "")
		if !errors.Is(err, ErrInvalidExtension) {
			t.Errorf("error = %v, want ErrInvalidExtension", err)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		t.Parallel()

		_, err := discoverFiles(filepath.Join(dir, "nope.txt"), "")
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want os.ErrNotExist", err)
		}
	})
}

func TestResolveOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		outputDir string
		baseDir   string
		want      string
	}{
		{"next to input", "docs/report.txt", "", "", filepath.Join("docs", "report.pdf")},
		{"explicit pdf path", "report.txt", "out/final.pdf", "", "out/final.pdf"},
		{"output directory", "docs/report.txt", "out", "", filepath.Join("out", "report.pdf")},
		{"relative to base dir", "docs/q3/report.md", "out", "docs", filepath.Join("out", "q3", "report.pdf")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := resolveOutputPath(tt.input, tt.outputDir, tt.baseDir); got != tt.want {
				t.Errorf("resolveOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTitleFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"q3_report.txt", "q3 report"},
		{"dir/market-analysis.md", "market analysis"},
		{"plain.text", "plain"},
		{"__.txt", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			if got := titleFromPath(tt.path); got != tt.want {
				t.Errorf("titleFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestHTMLOutputPath(t *testing.T) {
	t.Parallel()

	if got := htmlOutputPath("out/report.pdf"); got != "out/report.html" {
		t.Errorf("htmlOutputPath() = %q", got)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

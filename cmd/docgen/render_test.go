package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	docgen "github.com/alnah/go-docgen"
)

const sampleText = `Here is your report:

QUARTERLY OVERVIEW

Revenue grew across all regions.

Key Results:
- Revenue up 12%
- Costs flat

| Region | Revenue |
|--------|---------|
| North  | 1.2M    |
`

func TestRunRender_SingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "q3_report.txt")
	mustWrite(t, input, sampleText)

	tio := newTestEnv(t, nil)
	code := runMain([]string{"docgen", "render", "--html", "--author", "Finance", input}, tio.env)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, tio.stderr)
	}

	readPDF(t, filepath.Join(dir, "q3_report.pdf"))
	html, err := os.ReadFile(filepath.Join(dir, "q3_report.html"))
	if err != nil {
		t.Fatalf("HTML not written: %v", err)
	}
	if !strings.Contains(string(html), "q3 report") {
		t.Errorf("title from file name missing from HTML")
	}
	if strings.Contains(string(html), "Here is your report") {
		t.Errorf("preamble survived normalization")
	}
	if !strings.Contains(tio.stdout.String(), "Created "+filepath.Join(dir, "q3_report.pdf")) {
		t.Errorf("stdout = %q", tio.stdout)
	}
}

func TestRunRender_Directory(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "pdf")
	mustWrite(t, filepath.Join(in, "one.txt"), "ONE\n\nFirst document.")
	mustWrite(t, filepath.Join(in, "nested", "two.md"), "Second document.")
	mustWrite(t, filepath.Join(in, "skip.csv"), "a,b")

	tio := newTestEnv(t, nil)
	code := runMain([]string{"docgen", "render", "-w", "2", "-o", out, "--title", "Shared", in}, tio.env)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, tio.stderr)
	}

	readPDF(t, filepath.Join(out, "one.pdf"))
	readPDF(t, filepath.Join(out, "nested", "two.pdf"))
	if !strings.Contains(tio.stdout.String(), "2 succeeded, 0 failed") {
		t.Errorf("stdout = %q", tio.stdout)
	}
}

func TestRunRender_Stdin(t *testing.T) {
	t.Parallel()

	tio := newTestEnv(t, nil)
	tio.env.Stdin = strings.NewReader(sampleText)

	code := runMain([]string{"docgen", "render", "-q", "-"}, tio.env)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, tio.stderr)
	}
	if !bytes.HasPrefix(tio.stdout.Bytes(), []byte("%PDF")) {
		t.Errorf("stdout is not a PDF: %q", tio.stdout.Bytes()[:min(tio.stdout.Len(), 16)])
	}
}

func TestRunRender_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "doc.txt")
	mustWrite(t, input, "Body.")
	mustWrite(t, filepath.Join(dir, "doc.csv"), "a,b")

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"missing file", []string{filepath.Join(dir, "missing.txt")}, ExitIO, "no such file"},
		{"wrong extension", []string{filepath.Join(dir, "doc.csv")}, ExitUsage, "file must have"},
		{"empty directory", []string{t.TempDir()}, ExitIO, "no text files found"},
		{"invalid page size", []string{"-p", "tabloid", input}, ExitUsage, "invalid page size"},
		{"invalid margin", []string{"--margin", "5", input}, ExitUsage, "invalid margin"},
		{"invalid backend", []string{"-b", "prince", input}, ExitUsage, "render.backend"},
		{"invalid timeout", []string{"-t", "soon", input}, ExitUsage, "render.timeout"},
		{"missing css", []string{"--css", filepath.Join(dir, "nope.css"), input}, ExitIO, "failed to read CSS file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tio := newTestEnv(t, nil)
			args := append([]string{"docgen", "render"}, tt.args...)
			code := runMain(args, tio.env)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, tio.stderr)
			}
			if !strings.Contains(tio.stderr.String(), tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", tio.stderr, tt.wantErr)
			}
		})
	}
}

// mockRenderer records documents and fails for titles in failFor.
type mockRenderer struct {
	mu      sync.Mutex
	titles  []string
	failFor map[string]bool
}

func (m *mockRenderer) Convert(_ context.Context, doc docgen.Document) (*docgen.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.titles = append(m.titles, doc.Title)
	if m.failFor[doc.Title] {
		return nil, docgen.ErrPDFGeneration
	}
	return &docgen.Result{PDF: []byte("%PDF-1.4 mock"), HTML: []byte("<html></html>")}, nil
}

func TestRenderBatch(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	out := t.TempDir()
	var files []FileToRender
	for _, name := range []string{"alpha", "beta", "gamma"} {
		path := filepath.Join(in, name+".txt")
		mustWrite(t, path, name)
		files = append(files, FileToRender{InputPath: path, OutputPath: filepath.Join(out, name+".pdf")})
	}
	files = append(files, FileToRender{InputPath: filepath.Join(in, "missing.txt"), OutputPath: filepath.Join(out, "missing.pdf")})

	r := &mockRenderer{failFor: map[string]bool{"beta": true}}
	results := renderBatch(context.Background(), r, 2, files, &renderParams{})

	if len(results) != len(files) {
		t.Fatalf("got %d results, want %d", len(results), len(files))
	}
	for i, res := range results {
		if res.InputPath != files[i].InputPath {
			t.Errorf("results[%d] out of order: %q", i, res.InputPath)
		}
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("unexpected errors: %v, %v", results[0].Err, results[2].Err)
	}
	if !errors.Is(results[1].Err, docgen.ErrPDFGeneration) {
		t.Errorf("beta error = %v, want ErrPDFGeneration", results[1].Err)
	}
	if !errors.Is(results[3].Err, ErrReadInput) {
		t.Errorf("missing error = %v, want ErrReadInput", results[3].Err)
	}
	if _, err := os.Stat(filepath.Join(out, "beta.pdf")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("failed render left a file behind: %v", err)
	}

	summary := countResults(results)
	if summary.Succeeded != 2 || summary.Failed != 2 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestRenderBatch_CancelledContext(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.txt")
	mustWrite(t, path, "text")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &mockRenderer{}
	results := renderBatch(ctx, r, 1, []FileToRender{{InputPath: path, OutputPath: path + ".pdf"}}, &renderParams{})
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", results[0].Err)
	}
	if len(r.titles) != 0 {
		t.Errorf("renderer called after cancellation")
	}
}

func TestPrintResults(t *testing.T) {
	t.Parallel()

	results := []RenderResult{
		{InputPath: "a.txt", OutputPath: "a.pdf"},
		{InputPath: "b.txt", Err: errors.New("boom")},
	}

	tests := []struct {
		name       string
		quiet      bool
		verbose    bool
		wantStdout []string
		skipStdout string
	}{
		{"normal", false, false, []string{"Created a.pdf", "1 succeeded, 1 failed"}, ""},
		{"verbose", false, true, []string{"a.txt -> a.pdf"}, "Created"},
		{"quiet", true, false, nil, "Created"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tio := newTestEnv(t, nil)
			failed := printResults(results, tt.quiet, tt.verbose, tio.env)
			if failed != 1 {
				t.Errorf("failed = %d, want 1", failed)
			}
			if !strings.Contains(tio.stderr.String(), "FAILED b.txt: boom") {
				t.Errorf("stderr = %q", tio.stderr)
			}
			for _, want := range tt.wantStdout {
				if !strings.Contains(tio.stdout.String(), want) {
					t.Errorf("stdout = %q, want %q", tio.stdout, want)
				}
			}
			if tt.skipStdout != "" && strings.Contains(tio.stdout.String(), tt.skipStdout) {
				t.Errorf("stdout = %q, must not contain %q", tio.stdout, tt.skipStdout)
			}
			if tt.quiet && tio.stdout.Len() != 0 {
				t.Errorf("quiet mode printed %q", tio.stdout)
			}
		})
	}
}

package jobs

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	docgen "github.com/alnah/go-docgen"
	"github.com/alnah/go-docgen/internal/provider"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type stubProvider struct {
	mu    sync.Mutex
	texts []string
	err   error
	calls int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Generate(_ context.Context, req provider.Request) (*provider.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	i := p.calls
	p.calls++
	if i >= len(p.texts) {
		return &provider.Response{Text: "Suggested Title", Model: req.Model}, nil
	}
	return &provider.Response{Text: p.texts[i], InputTokens: 10, OutputTokens: 20, Model: "stub-model"}, nil
}

type providerMap map[string]provider.ContentProvider

func (m providerMap) Get(name string) (provider.ContentProvider, error) {
	if p, ok := m[name]; ok {
		return p, nil
	}
	return nil, provider.ErrUnknownProvider
}

type mockRenderer struct {
	mu   sync.Mutex
	docs []docgen.Document
	err  error
}

func (r *mockRenderer) Convert(_ context.Context, doc docgen.Document) (*docgen.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
	if r.err != nil {
		return nil, r.err
	}
	return &docgen.Result{PDF: []byte("%PDF-1.4 " + doc.Title)}, nil
}

type mockArtifacts struct {
	mu    sync.Mutex
	items map[string][]byte
	err   error
}

func (a *mockArtifacts) Put(_ context.Context, key string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	if a.items == nil {
		a.items = map[string][]byte{}
	}
	a.items[key] = data
	return nil
}

// progressStore records every progress value written.
type progressStore struct {
	*MemoryStore
	mu   sync.Mutex
	seen []int
}

func (s *progressStore) Update(ctx context.Context, id string, fn func(*Job)) (*Job, error) {
	job, err := s.MemoryStore.Update(ctx, id, fn)
	if err == nil {
		s.mu.Lock()
		if n := len(s.seen); n == 0 || s.seen[n-1] != job.Progress {
			s.seen = append(s.seen, job.Progress)
		}
		s.mu.Unlock()
	}
	return job, err
}

func (s *progressStore) progress() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.seen...)
}

type runnerFixture struct {
	runner    *Runner
	store     *progressStore
	provider  *stubProvider
	renderer  *mockRenderer
	artifacts *mockArtifacts
	finished  chan *Job
}

func newRunnerFixture(t *testing.T) *runnerFixture {
	t.Helper()

	f := &runnerFixture{
		store:     &progressStore{MemoryStore: NewMemoryStore(time.Hour)},
		provider:  &stubProvider{texts: []string{"EXECUTIVE SUMMARY\nAll good.", "More detail."}},
		renderer:  &mockRenderer{},
		artifacts: &mockArtifacts{},
		finished:  make(chan *Job, 4),
	}
	f.runner = NewRunner(RunnerConfig{
		Store:     f.store,
		Providers: providerMap{"stub": f.provider},
		Renderer:  f.renderer,
		Artifacts: f.artifacts,
		OnFinish:  func(j *Job) { f.finished <- j },
	})
	t.Cleanup(f.runner.Close)
	return f
}

func (f *runnerFixture) await(t *testing.T) *Job {
	t.Helper()
	select {
	case j := <-f.finished:
		return j
	case <-time.After(5 * time.Second):
		t.Fatal("job did not finish")
		return nil
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRunner_Success(t *testing.T) {
	t.Parallel()

	f := newRunnerFixture(t)

	job, err := f.runner.Submit(context.Background(), Request{
		Prompt:   "Write a status report",
		Provider: "stub",
		Chunks:   2,
		Author:   "Ops",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if job.Status != StatusProcessing || job.ID == "" {
		t.Errorf("submitted job = %+v", job)
	}

	done := f.await(t)
	if done.Status != StatusCompleted || done.Progress != ProgressDone {
		t.Fatalf("finished job = %+v", done)
	}
	if done.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", done.Title, DefaultTitle)
	}
	if done.Chunks != 2 || done.InputTokens != 20 || done.OutputTokens != 40 || done.Model != "stub-model" {
		t.Errorf("accounting = %+v", done)
	}
	if done.ArtifactKey != ArtifactKey(job.ID) || done.CompletedAt == nil {
		t.Errorf("artifact/completion = %q/%v", done.ArtifactKey, done.CompletedAt)
	}
	if !strings.HasPrefix(done.Filename, "Generated_Document_") {
		t.Errorf("Filename = %q", done.Filename)
	}

	if _, ok := f.artifacts.items[done.ArtifactKey]; !ok {
		t.Error("PDF was not stored")
	}
	doc := f.renderer.docs[0]
	if doc.Content != "EXECUTIVE SUMMARY\nAll good.\n\nMore detail." || doc.Author != "Ops" {
		t.Errorf("rendered document = %+v", doc)
	}

	want := []int{ProgressStarted, ProgressSelected, 45, ProgressGenerated, ProgressTitled, ProgressRendered, ProgressDone}
	got := f.store.progress()
	if len(got) != len(want) {
		t.Fatalf("progress = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("progress = %v, want %v", got, want)
			break
		}
	}
}

func TestRunner_AutoTitle(t *testing.T) {
	t.Parallel()

	f := newRunnerFixture(t)
	f.provider.texts = []string{"Body text."}

	if _, err := f.runner.Submit(context.Background(), Request{Prompt: "x", Provider: "stub", AutoTitle: true}); err != nil {
		t.Fatal(err)
	}
	done := f.await(t)
	if done.Title != "Suggested Title" {
		t.Errorf("Title = %q, want generated title", done.Title)
	}
}

func TestRunner_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(f *runnerFixture)
		wantErr string
	}{
		{
			name:    "provider error",
			mutate:  func(f *runnerFixture) { f.provider.err = errors.New("quota exceeded") },
			wantErr: "quota exceeded",
		},
		{
			name:    "render error",
			mutate:  func(f *runnerFixture) { f.renderer.err = errors.New("no fonts") },
			wantErr: "rendering PDF: no fonts",
		},
		{
			name:    "artifact error",
			mutate:  func(f *runnerFixture) { f.artifacts.err = errors.New("bucket gone") },
			wantErr: "storing PDF: bucket gone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newRunnerFixture(t)
			tt.mutate(f)

			job, err := f.runner.Submit(context.Background(), Request{Prompt: "x", Provider: "stub"})
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			done := f.await(t)
			if done.ID != job.ID || done.Status != StatusFailed {
				t.Fatalf("finished job = %+v", done)
			}
			if !strings.Contains(done.Error, tt.wantErr) {
				t.Errorf("Error = %q, want it to contain %q", done.Error, tt.wantErr)
			}
			if done.CompletedAt == nil {
				t.Error("failed job should record completion time")
			}
		})
	}
}

func TestRunner_SubmitRejects(t *testing.T) {
	t.Parallel()

	f := newRunnerFixture(t)

	if _, err := f.runner.Submit(context.Background(), Request{Prompt: "  ", Provider: "stub"}); !errors.Is(err, ErrInvalidJob) {
		t.Errorf("empty prompt error = %v, want ErrInvalidJob", err)
	}
	if _, err := f.runner.Submit(context.Background(), Request{Prompt: "x", Provider: "nope"}); !errors.Is(err, provider.ErrUnknownProvider) {
		t.Errorf("unknown provider error = %v, want ErrUnknownProvider", err)
	}
	if f.store.Len() != 0 {
		t.Errorf("rejected submissions must not create jobs, got %d", f.store.Len())
	}

	f.runner.Close()
	if _, err := f.runner.Submit(context.Background(), Request{Prompt: "x", Provider: "stub"}); !errors.Is(err, ErrRunnerClosed) {
		t.Errorf("after Close error = %v, want ErrRunnerClosed", err)
	}
}

func TestDownloadName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title, id, want string
	}{
		{"Quarterly Report", "0123456789abcdef", "Quarterly_Report_01234567.pdf"},
		{"", "abc", "generated_abc.pdf"},
		{"***", "deadbeef-1234", "generated_deadbeef.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			if got := DownloadName(tt.title, tt.id); got != tt.want {
				t.Errorf("DownloadName() = %q, want %q", got, tt.want)
			}
		})
	}
}

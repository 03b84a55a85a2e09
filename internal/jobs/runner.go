package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	docgen "github.com/alnah/go-docgen"
	"github.com/alnah/go-docgen/internal/fileutil"
	"github.com/alnah/go-docgen/internal/logger"
	"github.com/alnah/go-docgen/internal/provider"
)

// Progress checkpoints.
const (
	ProgressStarted   = 10
	ProgressSelected  = 20
	ProgressGenerated = 70
	ProgressTitled    = 75
	ProgressRendered  = 90
	ProgressDone      = 100

	// generationSpan is the share of progress spent on chunked generation.
	generationSpan = ProgressGenerated - ProgressSelected
)

// DefaultTitle is used when a request names no title.
const DefaultTitle = "Generated Document"

// DefaultTimeout bounds one job end to end.
const DefaultTimeout = 10 * time.Minute

// Sentinel errors.
var (
	ErrRunnerClosed = errors.New("job runner is closed")
	ErrInvalidJob   = errors.New("invalid job request")
)

// Providers looks up content providers by name.
type Providers interface {
	Get(name string) (provider.ContentProvider, error)
}

// Renderer turns a document into PDF bytes.
type Renderer interface {
	Convert(ctx context.Context, doc docgen.Document) (*docgen.Result, error)
}

// Artifacts stores finished PDFs.
type Artifacts interface {
	Put(ctx context.Context, key string, data []byte) error
}

// Request describes one generation job.
type Request struct {
	Prompt      string
	Source      string // optional source material
	Title       string // empty = DefaultTitle, or generated when AutoTitle
	AutoTitle   bool
	Author      string
	Subject     string
	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int
	Chunks      int
	Page        *docgen.PageSettings
}

// RunnerConfig wires a Runner.
type RunnerConfig struct {
	Store     Store
	Providers Providers
	Renderer  Renderer
	Artifacts Artifacts
	Logger    *logger.Logger
	Timeout   time.Duration // per job; 0 = DefaultTimeout

	// OnFinish, if set, is called once per job after its terminal update.
	OnFinish func(job *Job)
}

// Runner executes jobs in background goroutines.
type Runner struct {
	cfg    RunnerConfig
	log    *logger.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewRunner returns a Runner. Store, Providers, Renderer and Artifacts are
// required.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		cfg:    cfg,
		log:    log.With("component", "jobs"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Submit validates req, records a processing job and starts it. The job
// outlives ctx; it is bounded by the runner's timeout and Close.
func (r *Runner) Submit(ctx context.Context, req Request) (*Job, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJob, provider.ErrEmptyPrompt)
	}
	p, err := r.cfg.Providers.Get(req.Provider)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRunnerClosed
	}

	job := &Job{
		ID:        uuid.NewString(),
		Status:    StatusProcessing,
		Title:     strings.TrimSpace(req.Title),
		Provider:  p.Name(),
		Model:     req.Model,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.cfg.Store.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("recording job: %w", err)
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(job.ID, p, req)
	}()
	return job, nil
}

// Close cancels running jobs and waits for them to record their outcome.
func (r *Runner) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cancel()
	r.wg.Wait()
}

// Wait blocks until every submitted job has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(id string, p provider.ContentProvider, req Request) {
	ctx, cancel := context.WithTimeout(r.ctx, r.cfg.Timeout)
	defer cancel()
	log := r.log.With("job_id", id, "provider", p.Name())
	start := time.Now()

	err := r.execute(ctx, id, p, req, log)

	// Terminal updates must land even when ctx was cancelled.
	finalCtx, finalCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer finalCancel()

	var job *Job
	var uerr error
	now := time.Now().UTC()
	if err != nil {
		log.Error("job failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		job, uerr = r.cfg.Store.Update(finalCtx, id, func(j *Job) {
			j.Status = StatusFailed
			j.Error = err.Error()
			j.CompletedAt = &now
		})
	} else {
		log.Info("job completed", "duration_ms", time.Since(start).Milliseconds())
		job, uerr = r.cfg.Store.Update(finalCtx, id, func(j *Job) {
			j.Status = StatusCompleted
			j.Progress = ProgressDone
			j.CompletedAt = &now
		})
	}
	if uerr != nil {
		log.Error("recording job outcome", "error", uerr)
		return
	}
	if r.cfg.OnFinish != nil {
		r.cfg.OnFinish(job)
	}
}

func (r *Runner) execute(ctx context.Context, id string, p provider.ContentProvider, req Request, log *logger.Logger) error {
	r.progress(ctx, id, ProgressStarted, nil)

	prompt := provider.BuildPrompt(req.Prompt, req.Source)
	r.progress(ctx, id, ProgressSelected, nil)

	res, err := provider.GenerateLong(ctx, p, provider.Request{
		Prompt:      prompt,
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}, req.Chunks, func(done, total int) {
		r.progress(ctx, id, ProgressSelected+generationSpan*done/total, nil)
	})
	if err != nil {
		return fmt.Errorf("generating content: %w", err)
	}
	log.Debug("content generated", "chunks", res.Chunks, "input_tokens", res.InputTokens, "output_tokens", res.OutputTokens)
	r.progress(ctx, id, ProgressGenerated, func(j *Job) {
		j.Model = res.Model
		j.Chunks = res.Chunks
		j.InputTokens = res.InputTokens
		j.OutputTokens = res.OutputTokens
	})

	title := strings.TrimSpace(req.Title)
	if title == "" && req.AutoTitle {
		title = provider.GenerateTitle(ctx, p, res.Text, req.Model)
	}
	if title == "" {
		title = DefaultTitle
	}
	r.progress(ctx, id, ProgressTitled, func(j *Job) { j.Title = title })

	out, err := r.cfg.Renderer.Convert(ctx, docgen.Document{
		Content: res.Text,
		Title:   title,
		Author:  req.Author,
		Subject: req.Subject,
		Page:    req.Page,
		Metadata: map[string]any{
			"provider":      p.Name(),
			"model":         res.Model,
			"input_tokens":  res.InputTokens,
			"output_tokens": res.OutputTokens,
		},
	})
	if err != nil {
		return fmt.Errorf("rendering PDF: %w", err)
	}
	r.progress(ctx, id, ProgressRendered, nil)

	key := ArtifactKey(id)
	if err := r.cfg.Artifacts.Put(ctx, key, out.PDF); err != nil {
		return fmt.Errorf("storing PDF: %w", err)
	}
	r.progress(ctx, id, ProgressRendered, func(j *Job) {
		j.ArtifactKey = key
		j.Filename = DownloadName(title, id)
	})
	return nil
}

// progress records a checkpoint; failures are logged, not fatal.
func (r *Runner) progress(ctx context.Context, id string, pct int, fn func(*Job)) {
	_, err := r.cfg.Store.Update(ctx, id, func(j *Job) {
		if pct > j.Progress {
			j.Progress = pct
		}
		if fn != nil {
			fn(j)
		}
	})
	if err != nil {
		r.log.Warn("recording progress", "job_id", id, "progress", pct, "error", err)
	}
}

// ArtifactKey is the storage key of a job's PDF.
func ArtifactKey(id string) string {
	return id + ".pdf"
}

// DownloadName is the file name offered to clients for a job's PDF.
func DownloadName(title, id string) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return fileutil.SafeFilename(title, "generated") + "_" + short + ".pdf"
}

package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	docgen "github.com/alnah/go-docgen"
	"github.com/alnah/go-docgen/internal/artifact"
	"github.com/alnah/go-docgen/internal/fileutil"
	"github.com/alnah/go-docgen/internal/jobs"
	"github.com/alnah/go-docgen/internal/provider"
)

// MaxSourceLength bounds the source material of a generation request.
const MaxSourceLength = 200_000

type pageRequest struct {
	Size        string  `json:"size"`
	Orientation string  `json:"orientation"`
	Margin      float64 `json:"margin"`
}

type renderRequest struct {
	Content string       `json:"content"`
	Title   string       `json:"title" binding:"max=200"`
	Author  string       `json:"author" binding:"max=200"`
	Subject string       `json:"subject" binding:"max=200"`
	Page    *pageRequest `json:"page"`
	Format  string       `json:"format"` // "pdf" (default) or "html"
}

type generateRequest struct {
	Prompt      string       `json:"prompt" binding:"required,max=2000"`
	Source      string       `json:"source"`
	Title       string       `json:"title" binding:"max=200"`
	AutoTitle   bool         `json:"auto_title"`
	Provider    string       `json:"provider"`
	Model       string       `json:"model" binding:"max=200"`
	Temperature *float64     `json:"temperature"`
	MaxTokens   *int         `json:"max_tokens"`
	Length      *int         `json:"length"`
	Page        *pageRequest `json:"page"`
}

type generateResponse struct {
	JobID     string      `json:"job_id"`
	Status    jobs.Status `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}

type statusResponse struct {
	JobID          string      `json:"job_id"`
	Status         jobs.Status `json:"status"`
	Progress       int         `json:"progress"`
	Error          *string     `json:"error"`
	Title          string      `json:"title,omitempty"`
	Provider       string      `json:"provider,omitempty"`
	Model          string      `json:"model,omitempty"`
	InputTokens    int         `json:"input_tokens,omitempty"`
	OutputTokens   int         `json:"output_tokens,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	CompletionTime *time.Time  `json:"completion_time"`
}

func newStatusResponse(j *jobs.Job) statusResponse {
	resp := statusResponse{
		JobID:          j.ID,
		Status:         j.Status,
		Progress:       j.Progress,
		Title:          j.Title,
		Provider:       j.Provider,
		Model:          j.Model,
		InputTokens:    j.InputTokens,
		OutputTokens:   j.OutputTokens,
		CreatedAt:      j.CreatedAt,
		CompletionTime: j.CompletedAt,
	}
	if j.Error != "" {
		msg := j.Error
		resp.Error = &msg
	}
	return resp
}

// abort writes a JSON error body.
func abort(c *gin.Context, code int, msg string, err error) {
	body := gin.H{"error": msg}
	if err != nil {
		body["detail"] = err.Error()
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(code, body)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"providers": s.cfg.Providers.Names(),
	})
}

func (s *Server) handleProviders(c *gin.Context) {
	out := make(map[string]provider.Info)
	for _, info := range s.cfg.Providers.Available() {
		out[info.Name] = info
	}
	c.JSON(http.StatusOK, gin.H{"providers": out, "default": s.cfg.Defaults.Provider})
}

func (s *Server) handleRender(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	format := strings.ToLower(strings.TrimSpace(req.Format))
	switch format {
	case "", "pdf":
		format = "pdf"
	case "html":
	default:
		abort(c, http.StatusBadRequest, "invalid request", fmt.Errorf("unknown format %q (must be pdf or html)", req.Format))
		return
	}

	author := req.Author
	if author == "" {
		author = s.cfg.Defaults.Author
	}
	doc := docgen.Document{
		Content:  req.Content,
		Title:    req.Title,
		Author:   author,
		Subject:  req.Subject,
		Page:     s.page(req.Page),
		HTMLOnly: format == "html",
	}

	res, err := s.cfg.Renderer.Convert(c.Request.Context(), doc)
	if err != nil {
		code, msg := classifyRenderError(err)
		abort(c, code, msg, err)
		return
	}
	s.metrics.rendered.WithLabelValues("render", format).Inc()

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "document"
	}
	name := fileutil.SafeFilename(title, "document") + "." + format
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	if format == "html" {
		c.Data(http.StatusOK, "text/html; charset=utf-8", res.HTML)
		return
	}
	c.Data(http.StatusOK, "application/pdf", res.PDF)
}

// classifyRenderError maps conversion errors to HTTP status codes.
func classifyRenderError(err error) (int, string) {
	switch {
	case errors.Is(err, docgen.ErrFieldTooLong),
		errors.Is(err, docgen.ErrInvalidPageSize),
		errors.Is(err, docgen.ErrInvalidOrientation),
		errors.Is(err, docgen.ErrInvalidMargin):
		return http.StatusBadRequest, "invalid document"
	case errors.Is(err, docgen.ErrUnsupportedGlyph):
		return http.StatusUnprocessableEntity, "content has characters the native backend cannot draw; use the chrome backend"
	case errors.Is(err, docgen.ErrPoolClosed):
		return http.StatusServiceUnavailable, "server is shutting down"
	default:
		return http.StatusInternalServerError, "rendering failed"
	}
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid request", err)
		return
	}
	jr, err := s.jobRequest(req)
	if err != nil {
		abort(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	job, err := s.runner.Submit(c.Request.Context(), jr)
	switch {
	case err == nil:
	case errors.Is(err, provider.ErrUnknownProvider):
		abort(c, http.StatusBadRequest,
			fmt.Sprintf("provider %q is not configured (available: %s)", jr.Provider, strings.Join(s.cfg.Providers.Names(), ", ")), nil)
		return
	case errors.Is(err, jobs.ErrInvalidJob):
		abort(c, http.StatusBadRequest, "invalid request", err)
		return
	case errors.Is(err, jobs.ErrRunnerClosed):
		abort(c, http.StatusServiceUnavailable, "server is shutting down", err)
		return
	default:
		abort(c, http.StatusInternalServerError, "could not start job", err)
		return
	}

	c.JSON(http.StatusAccepted, generateResponse{
		JobID:     job.ID,
		Status:    job.Status,
		Timestamp: job.CreatedAt,
	})
}

// jobRequest validates ranges and applies defaults.
func (s *Server) jobRequest(req generateRequest) (jobs.Request, error) {
	d := s.cfg.Defaults
	jr := jobs.Request{
		Prompt:      strings.TrimSpace(req.Prompt),
		Source:      req.Source,
		Title:       req.Title,
		AutoTitle:   req.AutoTitle,
		Author:      d.Author,
		Provider:    strings.ToLower(strings.TrimSpace(req.Provider)),
		Model:       req.Model,
		Temperature: d.Temperature,
		MaxTokens:   d.MaxTokens,
		Chunks:      d.Chunks,
		Page:        s.page(req.Page),
	}
	if jr.Provider == "" {
		jr.Provider = d.Provider
	}
	if jr.Prompt == "" {
		return jr, provider.ErrEmptyPrompt
	}
	if len(req.Source) > MaxSourceLength {
		return jr, fmt.Errorf("source exceeds %d bytes", MaxSourceLength)
	}
	if req.Temperature != nil {
		if *req.Temperature < 0 || *req.Temperature > 2 {
			return jr, fmt.Errorf("temperature must be between 0 and 2, got %g", *req.Temperature)
		}
		jr.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		if *req.MaxTokens < 100 || *req.MaxTokens > 4096 {
			return jr, fmt.Errorf("max_tokens must be between 100 and 4096, got %d", *req.MaxTokens)
		}
		jr.MaxTokens = *req.MaxTokens
	}
	if req.Length != nil {
		if *req.Length < provider.MinChunks || *req.Length > provider.MaxChunks {
			return jr, fmt.Errorf("length must be between %d and %d, got %d", provider.MinChunks, provider.MaxChunks, *req.Length)
		}
		jr.Chunks = *req.Length
	}
	if err := jr.Page.Validate(); err != nil {
		return jr, err
	}
	return jr, nil
}

// page merges a request's page settings over the configured defaults.
func (s *Server) page(req *pageRequest) *docgen.PageSettings {
	base := s.cfg.Defaults.Page
	if base == nil {
		base = docgen.DefaultPageSettings()
	}
	p := *base
	if req == nil {
		return &p
	}
	if req.Size != "" {
		p.Size = req.Size
	}
	if req.Orientation != "" {
		p.Orientation = req.Orientation
	}
	if req.Margin != 0 {
		p.Margin = req.Margin
	}
	return &p
}

func (s *Server) handleStatus(c *gin.Context) {
	job, err := s.cfg.Jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.jobLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, newStatusResponse(job))
}

func (s *Server) handleDownload(c *gin.Context) {
	ctx := c.Request.Context()
	job, err := s.cfg.Jobs.Get(ctx, c.Param("id"))
	if err != nil {
		s.jobLookupError(c, err)
		return
	}
	if job.Status != jobs.StatusCompleted {
		abort(c, http.StatusBadRequest, fmt.Sprintf("job not completed (status: %s)", job.Status), nil)
		return
	}
	if job.ArtifactKey == "" {
		abort(c, http.StatusGone, "PDF file not found or expired", nil)
		return
	}

	data, err := s.cfg.Artifacts.Get(ctx, job.ArtifactKey)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			abort(c, http.StatusGone, "PDF file not found or expired", nil)
			return
		}
		abort(c, http.StatusInternalServerError, "could not read PDF", err)
		return
	}

	name := job.Filename
	if name == "" {
		name = jobs.DownloadName(job.Title, job.ID)
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, "application/pdf", data)
}

func (s *Server) jobLookupError(c *gin.Context, err error) {
	if errors.Is(err, jobs.ErrNotFound) {
		abort(c, http.StatusNotFound, "job not found", nil)
		return
	}
	abort(c, http.StatusInternalServerError, "could not load job", err)
}

// Package pipeline runs one art command end to end: generate, decode,
// compose. Delivery belongs to the caller (Slack upload, HTTP response or a
// file on disk), which receives the finished Artifact.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"artbot/internal/grid"
	"artbot/internal/sdclient"
)

// Generator issues one backend generation.
type Generator interface {
	Generate(ctx context.Context, prompt string, imageCount int) (sdclient.GenerationResult, error)
}

// Composer turns base64 image payloads into one encoded picture.
type Composer interface {
	Compose(ctx context.Context, images []string) ([]byte, error)
}

// Command is one inbound request.
type Command struct {
	Prompt    string
	Channel   string
	UserID    string
	RequestID string
}

// Artifact is the deliverable produced for a Command.
type Artifact struct {
	PNG      []byte
	Filename string
	Title    string
	// Elapsed is the backend round trip.
	Elapsed time.Duration
}

// ErrEmptyPrompt is returned for a blank prompt; the backend is not called.
var ErrEmptyPrompt = errors.New("prompt is required")

// Stats counts finished runs.
type Stats struct {
	Runs   uint64
	Failed uint64
}

// Pipeline is safe for concurrent use; runs share no mutable state beyond
// counters.
type Pipeline struct {
	gen   Generator
	comp  Composer
	count int
	log   zerolog.Logger
	now   func() time.Time

	runs   atomic.Uint64
	failed atomic.Uint64
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the base logger; each run adds its request id.
func WithLogger(l zerolog.Logger) Option { return func(p *Pipeline) { p.log = l } }

// WithClock overrides time.Now for filename stamping.
func WithClock(now func() time.Time) Option { return func(p *Pipeline) { p.now = now } }

// New builds a pipeline requesting imageCount images per run.
func New(gen Generator, comp Composer, imageCount int, opts ...Option) *Pipeline {
	p := &Pipeline{
		gen:   gen,
		comp:  comp,
		count: imageCount,
		log:   zerolog.Nop(),
		now:   time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ImageCount is the batch size sent to the backend.
func (p *Pipeline) ImageCount() int { return p.count }

// Stats returns a snapshot of the run counters.
func (p *Pipeline) Stats() Stats {
	return Stats{Runs: p.runs.Load(), Failed: p.failed.Load()}
}

// Run executes cmd. Any error aborts the run; compose is never reached when
// generation or decoding fails.
func (p *Pipeline) Run(ctx context.Context, cmd Command) (Artifact, error) {
	if cmd.RequestID == "" {
		cmd.RequestID = uuid.NewString()
	}
	log := p.log.With().Str("request_id", cmd.RequestID).Str("channel", cmd.Channel).Logger()

	art, err := p.run(ctx, cmd, log)
	outcome := Outcome(err)
	runsTotal.WithLabelValues(outcome).Inc()
	p.runs.Add(1)
	if err != nil {
		p.failed.Add(1)
		log.Warn().Err(err).Str("outcome", outcome).Msg("art failed")
		return Artifact{}, err
	}
	log.Info().Int("bytes", len(art.PNG)).Dur("backend", art.Elapsed).Msg("art composed")
	return art, nil
}

func (p *Pipeline) run(ctx context.Context, cmd Command, log zerolog.Logger) (Artifact, error) {
	// Blank check only; the prompt itself is forwarded verbatim.
	if strings.TrimSpace(cmd.Prompt) == "" {
		return Artifact{}, ErrEmptyPrompt
	}
	prompt := cmd.Prompt
	log.Info().Str("prompt", prompt).Int("count", p.count).Msg("art start")

	res, err := p.gen.Generate(ctx, prompt, p.count)
	if err != nil {
		return Artifact{}, err
	}
	log.Debug().Int64("elapsed_ms", res.ElapsedMillis).Msg("backend responded")

	decoded, err := sdclient.Decode(res)
	if err != nil {
		return Artifact{}, err
	}
	if len(decoded.Images) != p.count {
		log.Warn().Int("requested", p.count).Int("returned", len(decoded.Images)).Msg("backend image count mismatch")
	}

	png, err := p.comp.Compose(ctx, decoded.Images)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		PNG:      png,
		Filename: Filename(p.now()),
		Title:    prompt,
		Elapsed:  res.Elapsed(),
	}, nil
}

// Filename stamps an ISO-8601 UTC timestamp, e.g. 2024-05-01T12:00:00.000Z.png.
func Filename(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00") + ".png"
}

// Outcome classifies err for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmptyPrompt):
		return "invalid"
	case sdclient.IsTimeout(err):
		return "timeout"
	case sdclient.IsHTTPStatus(err):
		return "http_status"
	case sdclient.IsParse(err):
		return "parse"
	case grid.IsInsufficientImages(err):
		return "insufficient"
	default:
		return "error"
	}
}

// Package slackbot wires the art pipeline to a Slack slash command over
// Socket Mode.
//
// A command is acknowledged before any backend work starts, since Slack
// expects an ack within three seconds. The pipeline then runs in its own
// goroutine, detached from the listener's cancellation, and the composite
// PNG is uploaded to the originating channel.
package slackbot

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"artbot/internal/pipeline"
)

// Runner executes one command.
type Runner interface {
	Run(ctx context.Context, cmd pipeline.Command) (pipeline.Artifact, error)
}

// API is the subset of *slack.Client used for delivery.
type API interface {
	UploadFileV2Context(ctx context.Context, params slack.UploadFileV2Parameters) (*slack.FileSummary, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Bot handles slash commands.
type Bot struct {
	runner  Runner
	api     API
	command string
	notify  bool
	log     zerolog.Logger

	wg        sync.WaitGroup
	connected atomic.Bool
	inflight  atomic.Int64
}

// Option configures a Bot.
type Option func(*Bot)

// WithCommand sets the slash command to answer, "/art" by default.
func WithCommand(name string) Option {
	return func(b *Bot) {
		if name != "" {
			b.command = name
		}
	}
}

// WithErrorNotice posts a short failure message to the channel.
func WithErrorNotice(on bool) Option { return func(b *Bot) { b.notify = on } }

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option { return func(b *Bot) { b.log = l } }

// New builds a Bot delivering through api.
func New(runner Runner, api API, opts ...Option) *Bot {
	b := &Bot{
		runner:  runner,
		api:     api,
		command: "/art",
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Connected reports whether the Socket Mode session is up.
func (b *Bot) Connected() bool { return b.connected.Load() }

// Inflight is the number of commands currently running.
func (b *Bot) Inflight() int64 { return b.inflight.Load() }

// Wait blocks until every dispatched command has finished.
func (b *Bot) Wait() { b.wg.Wait() }

// HandleCommand starts cmd in the background and returns immediately. The
// caller must already have acknowledged the command.
func (b *Bot) HandleCommand(ctx context.Context, cmd slack.SlashCommand) {
	b.wg.Add(1)
	b.inflight.Add(1)
	// Detach from the listener: a shutdown must not abort a running command.
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer b.wg.Done()
		defer b.inflight.Add(-1)
		b.handle(ctx, cmd)
	}()
}

func (b *Bot) handle(ctx context.Context, sc slack.SlashCommand) {
	cmd := pipeline.Command{
		Prompt:    sc.Text,
		Channel:   sc.ChannelID,
		UserID:    sc.UserID,
		RequestID: uuid.NewString(),
	}
	log := b.log.With().Str("request_id", cmd.RequestID).Str("channel", cmd.Channel).Str("user", cmd.UserID).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("art command panicked")
		}
	}()

	art, err := b.runner.Run(ctx, cmd)
	if err != nil {
		b.fail(ctx, log, cmd, err)
		return
	}
	if err := b.deliver(ctx, cmd.Channel, art); err != nil {
		b.fail(ctx, log, cmd, err)
		return
	}
	log.Info().Str("filename", art.Filename).Msg("art delivered")
}

func (b *Bot) deliver(ctx context.Context, channel string, art pipeline.Artifact) error {
	_, err := b.api.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		Channel:  channel,
		Reader:   bytes.NewReader(art.PNG),
		FileSize: len(art.PNG),
		Filename: art.Filename,
		Title:    art.Title,
	})
	if err != nil {
		return fmt.Errorf("upload to slack: %w", err)
	}
	return nil
}

func (b *Bot) fail(ctx context.Context, log zerolog.Logger, cmd pipeline.Command, err error) {
	log.Error().Err(err).Str("outcome", pipeline.Outcome(err)).Msg("art command failed")
	if !b.notify || cmd.Channel == "" {
		return
	}
	text := fmt.Sprintf("Sorry, I couldn't draw %q: %s", cmd.Prompt, noticeReason(err))
	if _, _, perr := b.api.PostMessageContext(ctx, cmd.Channel, slack.MsgOptionText(text, false)); perr != nil {
		log.Warn().Err(perr).Msg("post error notice")
	}
}

func noticeReason(err error) string {
	switch pipeline.Outcome(err) {
	case "timeout":
		return "the image backend took too long."
	case "http_status", "parse", "insufficient":
		return "the image backend returned an unusable response."
	case "invalid":
		return "please give me a prompt."
	default:
		return "something went wrong."
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"artbot/internal/config"
	"artbot/internal/grid"
	"artbot/internal/httpapi"
	"artbot/internal/pipeline"
	"artbot/internal/sdclient"
	"artbot/internal/slackbot"
)

const shutdownGrace = 5 * time.Second

// newPipeline wires backend client and composer from cfg.
func newPipeline(s settings) *pipeline.Pipeline {
	client := sdclient.New(s.cfg.BackendURL,
		sdclient.WithTimeout(s.cfg.RequestTimeout()),
		sdclient.WithLogger(s.log),
	)
	comp := grid.NewComposer(s.cfg.ImageCount, s.cfg.CellSize)
	return pipeline.New(client, comp, s.cfg.ImageCount, pipeline.WithLogger(s.log))
}

func runServe(ctx context.Context, s settings) error {
	log := s.log
	if err := s.cfg.Validate(true); err != nil {
		if config.IsMissingCredential(err) {
			log.Error().Err(err).Msg("refusing to start without slack credentials")
		}
		return err
	}

	pipe := newPipeline(s)
	api, sock := slackbot.NewSocketClient(s.cfg.SlackAppToken, s.cfg.SlackBotToken)
	bot := slackbot.New(pipe, api,
		slackbot.WithCommand(s.cfg.SlashCommand),
		slackbot.WithErrorNotice(s.cfg.ErrorNotices()),
		slackbot.WithLogger(log),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpapi.SetLogger(log)
	httpapi.SetBaseContext(ctx)
	httpapi.SetCORSOptions(s.cfg.CORS(), s.cfg.CORSOrigins, nil, nil)
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           httpapi.NewMux(newOpsService(s.cfg, pipe, bot)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 2)
	go func() {
		log.Info().Str("addr", s.cfg.Addr).Str("backend", s.cfg.BackendURL).Msg("artbot listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	go func() {
		if err := bot.Listen(ctx, sock); err != nil {
			errc <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case runErr = <-errc:
		log.Error().Err(runErr).Msg("server error")
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	drained := make(chan struct{})
	go func() {
		bot.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-shutdownCtx.Done():
		log.Warn().Int64("inflight", bot.Inflight()).Msg("exiting with commands still running")
	}
	return runErr
}

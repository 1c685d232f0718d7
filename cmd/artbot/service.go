package main

import (
	"context"
	"time"

	"artbot/internal/config"
	"artbot/internal/pipeline"
	"artbot/pkg/types"
)

// runner is the part of *pipeline.Pipeline the operations API needs.
type runner interface {
	Run(ctx context.Context, cmd pipeline.Command) (pipeline.Artifact, error)
	Stats() pipeline.Stats
}

// botState reports the Slack side; nil when no bot is running.
type botState interface {
	Connected() bool
	Inflight() int64
}

// opsService adapts the pipeline and bot to httpapi.Service.
type opsService struct {
	cfg     config.Config
	pipe    runner
	bot     botState
	started time.Time
	now     func() time.Time
}

func newOpsService(cfg config.Config, pipe runner, bot botState) *opsService {
	return &opsService{cfg: cfg, pipe: pipe, bot: bot, started: time.Now(), now: time.Now}
}

func (s *opsService) Run(ctx context.Context, cmd pipeline.Command) (pipeline.Artifact, error) {
	return s.pipe.Run(ctx, cmd)
}

// Ready is true once Slack is connected, or always when serving without a bot.
func (s *opsService) Ready() bool {
	return s.bot == nil || s.bot.Connected()
}

func (s *opsService) Status() types.StatusResponse {
	now := s.now()
	st := s.pipe.Stats()
	resp := types.StatusResponse{
		UptimeSeconds:  int64(now.Sub(s.started).Seconds()),
		ServerTimeUnix: now.Unix(),
		BackendURL:     s.cfg.BackendURL,
		ImageCount:     s.cfg.ImageCount,
		TimeoutSeconds: int64(s.cfg.RequestTimeout().Seconds()),
		Runs:           st.Runs,
		Failed:         st.Failed,
	}
	if s.bot != nil {
		resp.SlackConnected = s.bot.Connected()
		resp.Inflight = s.bot.Inflight()
	}
	return resp
}

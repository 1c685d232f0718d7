package slackbot

import (
	"context"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
)

// AckFunc acknowledges a Socket Mode envelope.
type AckFunc func(req socketmode.Request, payload ...interface{})

// NewSocketClient builds the Socket Mode client from the app-level and bot
// tokens. The returned *slack.Client satisfies API.
func NewSocketClient(appToken, botToken string) (*slack.Client, *socketmode.Client) {
	api := slack.New(botToken, slack.OptionAppLevelToken(appToken))
	return api, socketmode.New(api)
}

// Listen consumes Socket Mode events until ctx is done or the connection
// loop exits. Commands already dispatched keep running; call Wait to drain.
func (b *Bot) Listen(ctx context.Context, client *socketmode.Client) error {
	errc := make(chan error, 1)
	go func() { errc <- client.RunContext(ctx) }()
	for {
		select {
		case <-ctx.Done():
			b.connected.Store(false)
			return nil
		case err := <-errc:
			b.connected.Store(false)
			if ctx.Err() != nil {
				return nil
			}
			return err
		case evt, ok := <-client.Events:
			if !ok {
				return nil
			}
			b.dispatch(ctx, evt, client.Ack)
		}
	}
}

// dispatch routes one event. Every envelope carrying a request is acked.
func (b *Bot) dispatch(ctx context.Context, evt socketmode.Event, ack AckFunc) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		b.log.Info().Msg("connecting to slack")
	case socketmode.EventTypeConnected:
		b.connected.Store(true)
		b.log.Info().Msg("connected to slack")
	case socketmode.EventTypeConnectionError, socketmode.EventTypeDisconnect:
		b.connected.Store(false)
		b.log.Warn().Str("type", string(evt.Type)).Msg("slack connection lost")
	case socketmode.EventTypeInvalidAuth:
		b.connected.Store(false)
		b.log.Error().Msg("slack rejected credentials")
	case socketmode.EventTypeSlashCommand:
		cmd, ok := evt.Data.(slack.SlashCommand)
		if evt.Request != nil {
			ack(*evt.Request)
		}
		if !ok {
			b.log.Warn().Msg("slash command event without payload")
			return
		}
		if cmd.Command != b.command {
			b.log.Debug().Str("command", cmd.Command).Msg("ignoring command")
			return
		}
		b.HandleCommand(ctx, cmd)
	default:
		if evt.Request != nil {
			ack(*evt.Request)
		}
	}
}

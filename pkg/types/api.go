// Package types holds the JSON payloads of the operations API.
package types

// ArtRequest is the body of POST /v1/art.
type ArtRequest struct {
	// Required prompt text, forwarded verbatim to the image backend.
	// example: a lighthouse at dusk, oil painting
	Prompt string `json:"prompt" example:"a lighthouse at dusk, oil painting"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: prompt is required
	Error string `json:"error" example:"prompt is required"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
	// Failure class of the art pipeline, when one applies.
	// example: timeout
	Kind string `json:"kind,omitempty" example:"timeout"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Base URL of the image generation backend.
	// example: http://localhost:7861
	BackendURL string `json:"backend_url" example:"http://localhost:7861"`
	// Images requested per command.
	// example: 4
	ImageCount int `json:"image_count" example:"4"`
	// Backend request deadline in seconds.
	// example: 60
	TimeoutSeconds int64 `json:"timeout_seconds" example:"60"`
	// Art commands completed since start.
	// example: 12
	Runs uint64 `json:"runs" example:"12"`
	// Art commands that failed since start.
	// example: 1
	Failed uint64 `json:"failed" example:"1"`
	// Whether the Slack Socket Mode session is up.
	// example: true
	SlackConnected bool `json:"slack_connected" example:"true"`
	// Slash commands currently being drawn.
	// example: 0
	Inflight int64 `json:"inflight" example:"0"`
}

package sdclient

import "time"

// Txt2ImgPath is the backend route for text-to-image generation.
const Txt2ImgPath = "/sdapi/v1/txt2img"

// Fixed generation defaults sent with every request.
const (
	DefaultSteps    = 20
	DefaultSampler  = "Euler a"
	DefaultCfgScale = 7
	RandomSeed      = -1
)

// Txt2ImgRequest is the JSON body POSTed to Txt2ImgPath.
type Txt2ImgRequest struct {
	Prompt       string  `json:"prompt"`
	Steps        int     `json:"steps"`
	SamplerIndex string  `json:"sampler_index"`
	CfgScale     float64 `json:"cfg_scale"`
	// Seed of -1 lets the backend pick one.
	Seed      int64 `json:"seed"`
	BatchSize int   `json:"batch_size"`
}

// NewTxt2ImgRequest fills the fixed defaults around prompt and batch size.
func NewTxt2ImgRequest(prompt string, batchSize int) Txt2ImgRequest {
	return Txt2ImgRequest{
		Prompt:       prompt,
		Steps:        DefaultSteps,
		SamplerIndex: DefaultSampler,
		CfgScale:     DefaultCfgScale,
		Seed:         RandomSeed,
		BatchSize:    batchSize,
	}
}

// GenerationResult is the raw outcome of one Generate call.
type GenerationResult struct {
	RawBody       string
	ElapsedMillis int64
}

// Elapsed returns ElapsedMillis as a time.Duration.
func (r GenerationResult) Elapsed() time.Duration {
	return time.Duration(r.ElapsedMillis) * time.Millisecond
}

// DecodedResponse holds the base64 image payloads, in backend order.
type DecodedResponse struct {
	Images []string
	Info   string
}

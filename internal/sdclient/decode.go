package sdclient

import (
	"encoding/json"
	"strings"
)

type txt2ImgResponse struct {
	Images *[]string `json:"images"`
	Info   string    `json:"info"`
}

// Decode parses a txt2img response body. A body that is not JSON, or lacks
// an images array, yields a ParseError.
func Decode(res GenerationResult) (DecodedResponse, error) {
	if strings.TrimSpace(res.RawBody) == "" {
		return DecodedResponse{}, &ParseError{Reason: "empty body"}
	}
	var r txt2ImgResponse
	if err := json.Unmarshal([]byte(res.RawBody), &r); err != nil {
		return DecodedResponse{}, &ParseError{Reason: "invalid json", Err: err}
	}
	if r.Images == nil {
		return DecodedResponse{}, &ParseError{Reason: "missing images field"}
	}
	return DecodedResponse{Images: *r.Images, Info: r.Info}, nil
}

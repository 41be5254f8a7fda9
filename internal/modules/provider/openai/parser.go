package openai

import (
	jsoniter "github.com/json-iterator/go"
)

type generationResponse struct {
	Data  []imageItem `json:"data"`
	Error *apiError   `json:"error"`
}

type imageItem struct {
	B64JSON       string `json:"b64_json"`
	URL           string `json:"url"`
	RevisedPrompt string `json:"revised_prompt"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func parseGenerationResponse(body []byte) (*generationResponse, error) {
	resp := &generationResponse{}
	if err := jsoniter.Unmarshal(body, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// errorText extracts a human-readable failure message, falling back to the
// raw body when the payload is not the structured error shape.
func errorText(parsed *generationResponse, body []byte) string {
	if parsed != nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return string(body)
}

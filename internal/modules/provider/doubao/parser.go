package doubao

import (
	jsoniter "github.com/json-iterator/go"
)

// Ark answers in the OpenAI-compatible images shape.
type generationResponse struct {
	Data []imageItem `json:"data"`
}

type imageItem struct {
	B64JSON string `json:"b64_json"`
	URL     string `json:"url"`
}

func parseGenerationResponse(body []byte) (*generationResponse, error) {
	resp := &generationResponse{}
	if err := jsoniter.Unmarshal(body, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// errorText extracts the error field when the body carries one. Ark
// normally sends {"error": {"code", "message"}} but the field is not
// guaranteed to be an object.
func errorText(body []byte) string {
	node := jsoniter.Get(body, "error")
	switch node.ValueType() {
	case jsoniter.InvalidValue, jsoniter.NilValue:
		return ""
	case jsoniter.ObjectValue:
		if msg := node.Get("message").ToString(); msg != "" {
			return msg
		}
		return node.ToString()
	default:
		return node.ToString()
	}
}

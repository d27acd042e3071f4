package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedModelOutput indicates the model's text could not be parsed into
// one of the two recognized response shapes. Callers fall back to a fixed
// localized reply; the malformed text is never surfaced to the user.
var ErrMalformedModelOutput = errors.New("conversation: malformed model output")

// ModelOutput is the parsed form of the model's text: exactly one of Response
// (direct answer) or FunctionCall (action request) is set.
type ModelOutput struct {
	Response     *Reply        `json:"response"`
	FunctionCall *FunctionCall `json:"functionCall"`
}

// StripCodeFences removes a surrounding markdown code fence (``` or ```json)
// from model output. Text without fences is returned trimmed.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
	} else if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+len("```"):]
	}
	if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// ParseModelOutput validates the model's text against the two-shape contract
// and fails closed: anything that is not a JSON object carrying a non-empty
// response message or a named function call is rejected.
func ParseModelOutput(text string) (ModelOutput, error) {
	cleaned := StripCodeFences(text)
	if cleaned == "" {
		return ModelOutput{}, fmt.Errorf("%w: empty text", ErrMalformedModelOutput)
	}

	var out ModelOutput
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return ModelOutput{}, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
	}

	switch {
	case out.Response != nil && out.FunctionCall != nil:
		return ModelOutput{}, fmt.Errorf("%w: both response and functionCall present", ErrMalformedModelOutput)
	case out.Response != nil:
		if strings.TrimSpace(out.Response.Message) == "" {
			return ModelOutput{}, fmt.Errorf("%w: response without message", ErrMalformedModelOutput)
		}
	case out.FunctionCall != nil:
		if strings.TrimSpace(out.FunctionCall.Name) == "" {
			return ModelOutput{}, fmt.Errorf("%w: functionCall without name", ErrMalformedModelOutput)
		}
	default:
		return ModelOutput{}, fmt.Errorf("%w: neither response nor functionCall present", ErrMalformedModelOutput)
	}
	return out, nil
}

package conversation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"500", &googleapi.Error{Code: 500}, true},
		{"503", &googleapi.Error{Code: 503}, true},
		{"429 is not retried", &googleapi.Error{Code: 429}, false},
		{"400", &googleapi.Error{Code: 400}, false},
		{"wrapped 502", errors.Join(errors.New("outer"), &googleapi.Error{Code: 502}), true},
		{"plain error", errors.New("dial tcp: refused"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestHistoryToContents(t *testing.T) {
	raw, _ := json.Marshal(map[string]any{"nearby_services": map[string]any{"success": true}})
	history := []Turn{
		{Role: RoleUser, Text: "do you know anjali"},
		{Role: RoleModel, FunctionCall: &FunctionCall{Name: FnNearbyServices, Args: map[string]any{"user_name": "anjali"}}},
		{Role: RoleFunction, FunctionResponse: &FunctionResponse{Name: FnNearbyServices, Response: raw}},
		{Role: RoleModel, Text: `{"response": {"message": "I found Anjali."}}`},
		{Role: RoleUser}, // empty turn is dropped
	}

	contents := historyToContents(history)
	if len(contents) != 4 {
		t.Fatalf("len = %d, want 4", len(contents))
	}

	if contents[0].Role != RoleUser {
		t.Errorf("role[0] = %s", contents[0].Role)
	}
	if _, ok := contents[0].Parts[0].(genai.Text); !ok {
		t.Errorf("part[0] = %T, want genai.Text", contents[0].Parts[0])
	}

	fc, ok := contents[1].Parts[0].(genai.FunctionCall)
	if !ok || fc.Name != FnNearbyServices {
		t.Fatalf("part[1] = %#v", contents[1].Parts[0])
	}

	fr, ok := contents[2].Parts[0].(genai.FunctionResponse)
	if !ok || fr.Name != FnNearbyServices {
		t.Fatalf("part[2] = %#v", contents[2].Parts[0])
	}
	if _, ok := fr.Response["nearby_services"]; !ok {
		t.Errorf("function response lost its payload: %v", fr.Response)
	}
}

func TestDecodeResponseMapFallsBackToRaw(t *testing.T) {
	m := decodeResponseMap([]byte(`[1, 2, 3]`))
	if m["raw"] != "[1, 2, 3]" {
		t.Errorf("non-object payloads should be wrapped, got %v", m)
	}
}

package conversation

import (
	"errors"
	"testing"
)

func TestParseModelOutputDirectResponse(t *testing.T) {
	out, err := ParseModelOutput(`{"response": {"message": "Hey there!", "profile": null}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Response == nil || out.Response.Message != "Hey there!" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if out.FunctionCall != nil {
		t.Fatal("functionCall should be nil for a direct response")
	}
}

func TestParseModelOutputFunctionCall(t *testing.T) {
	out, err := ParseModelOutput(`{"functionCall": {"name": "get_nearby_services", "args": {"tagName": "doctor", "latitude": 18.52, "longitude": 73.85}}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.FunctionCall == nil || out.FunctionCall.Name != "get_nearby_services" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if out.FunctionCall.Args["tagName"] != "doctor" {
		t.Errorf("args = %v", out.FunctionCall.Args)
	}
}

func TestParseModelOutputStripsFences(t *testing.T) {
	inputs := []string{
		"```json\n{\"response\": {\"message\": \"hi\"}}\n```",
		"```\n{\"response\": {\"message\": \"hi\"}}\n```",
		"  {\"response\": {\"message\": \"hi\"}}  ",
	}
	for _, in := range inputs {
		out, err := ParseModelOutput(in)
		if err != nil {
			t.Errorf("ParseModelOutput(%q) error: %v", in, err)
			continue
		}
		if out.Response == nil || out.Response.Message != "hi" {
			t.Errorf("ParseModelOutput(%q) = %+v", in, out)
		}
	}
}

func TestParseModelOutputFailsClosed(t *testing.T) {
	inputs := []string{
		"",
		"plain prose, not JSON",
		"{}",
		`{"response": {"message": ""}}`,
		`{"functionCall": {"name": ""}}`,
		`{"response": {"message": "hi"}, "functionCall": {"name": "get_all_services"}}`,
		"```json\nnot json\n```",
	}
	for _, in := range inputs {
		if _, err := ParseModelOutput(in); !errors.Is(err, ErrMalformedModelOutput) {
			t.Errorf("ParseModelOutput(%q): expected ErrMalformedModelOutput, got %v", in, err)
		}
	}
}

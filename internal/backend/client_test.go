package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, "client-1", 5*time.Second, nil), ts
}

func TestSearchNearbyBuildsQuery(t *testing.T) {
	var gotQuery map[string]string
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"users": []map[string]any{{"user_id": "u1", "first_name": "Anjali"}}},
		})
	})

	raw, err := c.SearchNearby(context.Background(), "tok", NearbyParams{
		Latitude:  18.52,
		Longitude: 73.85,
		Page:      1,
		RadiusKm:  20,
		PageSize:  2,
		TagName:   "doctor",
	})
	if err != nil {
		t.Fatalf("SearchNearby error: %v", err)
	}

	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotQuery["radiusKm"] != "20" || gotQuery["pageSize"] != "2" || gotQuery["tagName"] != "doctor" {
		t.Errorf("unexpected query: %v", gotQuery)
	}
	if _, ok := gotQuery["userName"]; ok {
		t.Error("userName should be absent when only tagName is set")
	}

	var result NearbyResult
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !result.Success || len(result.Data.Users) != 1 || result.Data.Users[0].UserID != "u1" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSearchNearbyDegradesOnServerError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	raw, err := c.SearchNearby(context.Background(), "tok", NearbyParams{Latitude: 1, Longitude: 2, Page: 1, RadiusKm: 20, PageSize: 2})
	if err != nil {
		t.Fatalf("reads must not surface server errors, got %v", err)
	}
	if string(raw) != `[]` {
		t.Fatalf("expected empty result, got %s", raw)
	}
}

func TestListServicesDegradesOnNetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // force connection refused

	c := NewClient(ts.URL, "client-1", time.Second, nil)
	raw, err := c.ListServices(context.Background(), "tok")
	if err != nil {
		t.Fatalf("reads must not surface transport errors, got %v", err)
	}
	if string(raw) != `[]` {
		t.Fatalf("expected empty result, got %s", raw)
	}
}

func TestAvailabilityPath(t *testing.T) {
	var gotPath string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{"slots": []any{}})
	})

	if _, err := c.Availability(context.Background(), "tok", "user-9"); err != nil {
		t.Fatalf("Availability error: %v", err)
	}
	if gotPath != "/user-availability/client/client-1/user/user-9" {
		t.Errorf("path = %s", gotPath)
	}
}

func TestCreateTaskFillsDefaults(t *testing.T) {
	var gotPayload map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	})

	_, err := c.CreateTask(context.Background(), "tok", CreateTaskInput{
		Title:       "Road Maintenance Task",
		TaskType:    "maintenance",
		TaskDetails: "road is bad near the market",
		AssignedTo:  "u1",
		StartDate:   "2025-06-13",
		DueDate:     "2025-06-20",
		Tags:        []string{"maintenance", "roads", "high"},
		CreatedBy:   "caller-1",
	})
	if err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}

	if gotPayload["status"] != "new" {
		t.Errorf("status = %v", gotPayload["status"])
	}
	if gotPayload["priority"] != "high" {
		t.Errorf("priority = %v", gotPayload["priority"])
	}
	if gotPayload["project"] != "General Maintenance" || gotPayload["milestone"] != "Regular Tasks" {
		t.Errorf("org defaults missing: %v", gotPayload)
	}
	if gotPayload["assigned_by"] != "caller-1" || gotPayload["updated_by"] != "caller-1" {
		t.Errorf("creator propagation wrong: %v", gotPayload)
	}
}

func TestCreateTaskPropagatesServerError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	if _, err := c.CreateTask(context.Background(), "tok", CreateTaskInput{Title: "t"}); err == nil {
		t.Fatal("writes must surface failures, got nil error")
	}
}

func TestCreateAppointmentDefaultsAndTime(t *testing.T) {
	var gotPayload map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	})

	_, err := c.CreateAppointment(context.Background(), "tok", CreateAppointmentInput{
		TargetUserID:       "u1",
		UserAvailabilityID: "avail-1",
		Date:               "2025-06-13",
		Time:               "14:00",
		Duration:           60,
		Agenda:             []string{"school work"},
		CreatorName:        "User",
		Reason:             "school work",
		LoggedInUserID:     "caller-1",
	})
	if err != nil {
		t.Fatalf("CreateAppointment error: %v", err)
	}

	if gotPayload["time"] != "14:00:00" {
		t.Errorf("time = %v, want 14:00:00", gotPayload["time"])
	}
	if gotPayload["is_virtual"] != true || gotPayload["location_name"] != "remote" {
		t.Errorf("virtual defaults wrong: %v", gotPayload)
	}
	tags, _ := gotPayload["tags"].([]any)
	if len(tags) != 1 || tags[0] != "healthcare-related" {
		t.Errorf("tags = %v", gotPayload["tags"])
	}
}

func TestCreateAppointmentPropagatesServerError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "conflict", http.StatusConflict)
	})

	if _, err := c.CreateAppointment(context.Background(), "tok", CreateAppointmentInput{TargetUserID: "u1"}); err == nil {
		t.Fatal("writes must surface failures, got nil error")
	}
}

func TestMissingTokenFailsFast(t *testing.T) {
	called := false
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	if _, err := c.CreateTask(context.Background(), "", CreateTaskInput{Title: "t"}); err == nil {
		t.Fatal("expected error for missing token")
	}
	if _, err := c.SearchNearby(context.Background(), "", NearbyParams{Latitude: 1, Longitude: 2}); err == nil {
		t.Fatal("reads must also fail fast without a token")
	}
	if called {
		t.Fatal("no HTTP call should be made without a token")
	}
}

func TestTaskPriority(t *testing.T) {
	tests := []struct {
		tags []string
		want string
	}{
		{[]string{"urgent"}, "critical"},
		{[]string{"EMERGENCY"}, "critical"},
		{[]string{"maintenance", "high"}, "high"},
		{[]string{"important"}, "high"},
		{[]string{"routine"}, "low"},
		{[]string{"maintenance", "roads"}, "medium"},
		{nil, "medium"},
	}
	for _, tt := range tests {
		if got := taskPriority(tt.tags); got != tt.want {
			t.Errorf("taskPriority(%v) = %s, want %s", tt.tags, got, tt.want)
		}
	}
}

func TestNormalizeClockTime(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2025-06-13T14:00:00Z", "14:00:00"},
		{"14:00", "14:00:00"},
		{"14:00:00", "14:00:00"},
	}
	for _, tt := range tests {
		if got := NormalizeClockTime(tt.in); got != tt.want {
			t.Errorf("NormalizeClockTime(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

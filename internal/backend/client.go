package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gramseva/sahayak/pkg/logging"
)

const defaultTimeout = 20 * time.Second

// ErrNoToken indicates a backend call was attempted without a bearer token.
var ErrNoToken = errors.New("backend: no bearer token supplied")

// Client calls the services/tasks/appointments REST API. The bearer token is
// passed explicitly per call; nothing is held in process-global state.
//
// Read operations (ListServices, SearchNearby, Availability) degrade to an
// empty result on transport or server failure. Write operations (CreateTask,
// CreateAppointment) always surface failures as errors.
type Client struct {
	baseURL    string
	clientID   string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a backend REST client. clientID is the fixed client
// identifier used for availability lookups.
func NewClient(baseURL, clientID string, timeout time.Duration, logger *logging.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		clientID:   clientID,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ListServices returns the catalogue of service categories and subcategories.
func (c *Client) ListServices(ctx context.Context, token string) (json.RawMessage, error) {
	body, status, err := c.do(ctx, token, http.MethodGet, "/service-subcategory/subcategories-list", nil, nil)
	if errors.Is(err, ErrNoToken) {
		return nil, err
	}
	if err != nil || status != http.StatusOK {
		c.logger.Warn("list services degraded to empty result", "status", status, "error", err)
		return json.RawMessage(`[]`), nil
	}
	return body, nil
}

// SearchNearby finds providers around a location, optionally filtered by name
// or role tag. Returns the raw response body so callers can cache and replay
// it verbatim.
func (c *Client) SearchNearby(ctx context.Context, token string, params NearbyParams) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(params.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(params.Longitude, 'f', -1, 64))
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("radiusKm", strconv.FormatFloat(params.RadiusKm, 'f', -1, 64))
	q.Set("pageSize", strconv.Itoa(params.PageSize))
	if params.UserName != "" {
		q.Set("userName", params.UserName)
	}
	if params.TagName != "" {
		q.Set("tagName", params.TagName)
	}

	body, status, err := c.do(ctx, token, http.MethodGet, "/service-subcategory/service/nearby", q, nil)
	if errors.Is(err, ErrNoToken) {
		return nil, err
	}
	if err != nil || status != http.StatusOK {
		c.logger.Warn("nearby search degraded to empty result", "status", status, "error", err)
		return json.RawMessage(`[]`), nil
	}
	return body, nil
}

// Availability returns the availability slots for one provider.
func (c *Client) Availability(ctx context.Context, token, userID string) (json.RawMessage, error) {
	path := fmt.Sprintf("/user-availability/client/%s/user/%s", url.PathEscape(c.clientID), url.PathEscape(userID))
	body, status, err := c.do(ctx, token, http.MethodGet, path, nil, nil)
	if errors.Is(err, ErrNoToken) {
		return nil, err
	}
	if err != nil || status != http.StatusOK {
		c.logger.Warn("availability lookup degraded to empty result", "user_id", userID, "status", status, "error", err)
		return json.RawMessage(`{}`), nil
	}
	return body, nil
}

// CreateTask creates a task record. Unlike reads, failures are returned to the
// caller so a mutation never silently reports success.
func (c *Client) CreateTask(ctx context.Context, token string, in CreateTaskInput) (json.RawMessage, error) {
	payload := taskPayload{
		Title:       in.Title,
		TaskType:    in.TaskType,
		TaskDetails: in.TaskDetails,
		AssignedBy:  in.CreatedBy,
		AssignedTo:  in.AssignedTo,
		StartDate:   in.StartDate,
		DueDate:     in.DueDate,
		Status:      "new",
		Priority:    taskPriority(in.Tags),
		Project:     "General Maintenance",
		Milestone:   "Regular Tasks",
		Tags:        in.Tags,
		Attachments: []string{},
		Observers:   []string{},
		CustomFields: map[string]any{
			"reported_by":     "system",
			"estimated_hours": 2,
			"safety_risk":     "no",
		},
		ClientID:     in.ClientID,
		DepartmentID: in.DepartmentID,
		LocationID:   in.LocationID,
		CreatedBy:    in.CreatedBy,
		UpdatedBy:    in.CreatedBy,
	}

	body, status, err := c.do(ctx, token, http.MethodPost, "/task/", nil, payload)
	if err != nil {
		return nil, fmt.Errorf("backend: create task: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("backend: create task failed: status %d: %s", status, truncate(body, 200))
	}
	return body, nil
}

// CreateAppointment creates an appointment record. Failures are returned to
// the caller.
func (c *Client) CreateAppointment(ctx context.Context, token string, in CreateAppointmentInput) (json.RawMessage, error) {
	tags := in.Tags
	if len(tags) == 0 {
		tags = []string{"healthcare-related"}
	}
	payload := appointmentPayload{
		TargetUserID:       in.TargetUserID,
		UserAvailabilityID: in.UserAvailabilityID,
		Date:               in.Date,
		Time:               NormalizeClockTime(in.Time),
		Duration:           in.Duration,
		AppointmentAgenda:  in.Agenda,
		CreatorName:        in.CreatorName,
		Notes:              in.Notes,
		Reason:             in.Reason,
		LoggedInUserID:     in.LoggedInUserID,
		IsVirtual:          true,
		LocationName:       "remote",
		MeetingLink:        in.MeetingLink,
		Tags:               tags,
		ClientID:           in.ClientID,
		DepartmentID:       in.DepartmentID,
		LocationID:         in.LocationID,
		CreatedBy:          in.CreatedBy,
	}

	body, status, err := c.do(ctx, token, http.MethodPost, "/appointment/", nil, payload)
	if err != nil {
		return nil, fmt.Errorf("backend: create appointment: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("backend: create appointment failed: status %d: %s", status, truncate(body, 200))
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, token, method, path string, query url.Values, payload any) (json.RawMessage, int, error) {
	if strings.TrimSpace(token) == "" {
		return nil, 0, ErrNoToken
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("backend: marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("backend: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("backend: read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// taskPriority derives the task priority from its tags.
func taskPriority(tags []string) string {
	has := func(words ...string) bool {
		for _, tag := range tags {
			tag = strings.ToLower(tag)
			for _, w := range words {
				if tag == w {
					return true
				}
			}
		}
		return false
	}
	switch {
	case has("urgent", "emergency", "critical"):
		return "critical"
	case has("high", "important"):
		return "high"
	case has("low", "routine"):
		return "low"
	default:
		return "medium"
	}
}

// NormalizeClockTime converts an ISO timestamp or HH:MM value to HH:MM:SS.
// Already-normalized values pass through unchanged.
func NormalizeClockTime(t string) string {
	if strings.Contains(t, "T") {
		t = strings.SplitN(t, "T", 2)[1]
		t = strings.TrimSuffix(t, "Z")
	}
	if strings.Count(t, ":") == 1 {
		t += ":00"
	}
	return t
}

func truncate(b []byte, n int) string {
	s := string(b)
	if len(s) > n {
		return s[:n]
	}
	return s
}

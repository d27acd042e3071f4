package conversation

import "encoding/json"

// Turn roles, replayed verbatim to the model as dialogue history.
const (
	RoleUser     = "user"
	RoleModel    = "model"
	RoleFunction = "function"
)

// Recognized backend operations the model may request.
const (
	FnListServices      = "get_all_services"
	FnNearbyServices    = "get_nearby_services"
	FnUserAvailability  = "get_user_availability"
	FnCreateTask        = "create_task"
	FnCreateAppointment = "create_appointment"
)

// FunctionCall is a structured action request emitted by the model instead of
// free text, naming one of the recognized operations and its arguments.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// FunctionResponse records the raw backend result for a dispatched call.
type FunctionResponse struct {
	Name     string          `json:"name"`
	Response json.RawMessage `json:"response"`
}

// Turn is one exchange unit in a conversation: user text, model text, a model
// function call, or a function result.
type Turn struct {
	Role             string            `json:"role"`
	Text             string            `json:"text,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
}

// PendingAppointment holds date/time/duration extracted from free text before
// the model is consulted, carried across turns until an appointment is created.
type PendingAppointment struct {
	Date     string `json:"date,omitempty"`
	Time     string `json:"time,omitempty"`
	Duration int    `json:"duration,omitempty"`
}

// Complete reports whether all three fields are populated.
func (p PendingAppointment) Complete() bool {
	return p.Date != "" && p.Time != "" && p.Duration > 0
}

// IsZero reports whether no field is populated.
func (p PendingAppointment) IsZero() bool {
	return p.Date == "" && p.Time == "" && p.Duration == 0
}

// QueryRequest is the inbound payload for one conversational turn. Latitude
// and longitude arrive as numeric strings and are validated before use. The
// user id is opaque and not authenticated by this layer.
type QueryRequest struct {
	Query         string `json:"query"`
	UserID        string `json:"user_id"`
	Latitude      string `json:"latitude"`
	Longitude     string `json:"longitude"`
	Authorization string `json:"authorization,omitempty"`
}

// Profile is the caller-visible slice of a provider record. Internal
// identifiers are never included.
type Profile struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Designation string `json:"designation"`
}

// Reply is the assistant-facing message plus optional provider profiles.
type Reply struct {
	Message string    `json:"message"`
	Profile []Profile `json:"profile"`
}

// QueryResponse is the outbound envelope returned to the caller unchanged.
type QueryResponse struct {
	Response Reply `json:"response"`
}

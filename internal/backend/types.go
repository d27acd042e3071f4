package backend

// NearbyParams are the query parameters for the nearby-provider search.
// At most one of UserName/TagName is populated; the orchestrator enforces
// that before calling.
type NearbyParams struct {
	Latitude  float64
	Longitude float64
	Page      int
	RadiusKm  float64
	PageSize  int
	UserName  string
	TagName   string
}

// UserMapping carries the organizational identifiers attached to a provider.
type UserMapping struct {
	ClientID     string `json:"client_id"`
	DepartmentID string `json:"department_id"`
	LocationID   string `json:"location_id"`
}

// Provider is one service provider row from the nearby search.
type Provider struct {
	UserID      string      `json:"user_id"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Email       string      `json:"email"`
	PhoneNumber string      `json:"phone_number"`
	Designation string      `json:"designation"`
	UserMapping UserMapping `json:"user_mapping"`
}

// NearbyResult is the decoded nearby-search response envelope.
type NearbyResult struct {
	Success bool       `json:"success"`
	Data    NearbyData `json:"data"`
}

// NearbyData holds the provider rows.
type NearbyData struct {
	Users []Provider `json:"users"`
}

// CreateTaskInput is the caller-supplied portion of a task record. Fixed
// organizational defaults and the derived priority are filled in by the client.
type CreateTaskInput struct {
	Title        string
	TaskType     string
	TaskDetails  string
	AssignedTo   string
	StartDate    string
	DueDate      string
	Tags         []string
	ClientID     string
	DepartmentID string
	LocationID   string
	CreatedBy    string
}

// CreateAppointmentInput is the caller-supplied portion of an appointment
// record. Virtual/location defaults are filled in by the client.
type CreateAppointmentInput struct {
	TargetUserID       string
	UserAvailabilityID string
	Date               string
	Time               string
	Duration           int
	Agenda             []string
	CreatorName        string
	Notes              string
	Reason             string
	LoggedInUserID     string
	MeetingLink        string
	Tags               []string
	ClientID           string
	DepartmentID       string
	LocationID         string
	CreatedBy          string
}

type taskPayload struct {
	Title        string         `json:"title"`
	TaskType     string         `json:"task_type"`
	TaskDetails  string         `json:"task_details"`
	AssignedBy   string         `json:"assigned_by"`
	AssignedTo   string         `json:"assigned_to"`
	StartDate    string         `json:"start_date"`
	DueDate      string         `json:"due_date"`
	Status       string         `json:"status"`
	Priority     string         `json:"priority"`
	Project      string         `json:"project"`
	Milestone    string         `json:"milestone"`
	ParentTask   *string        `json:"parent_task"`
	Tags         []string       `json:"tags"`
	Attachments  []string       `json:"attachments"`
	Observers    []string       `json:"observers"`
	CustomFields map[string]any `json:"custom_fields"`
	ClientID     string         `json:"client_id,omitempty"`
	DepartmentID string         `json:"department_id,omitempty"`
	LocationID   string         `json:"location_id,omitempty"`
	CreatedBy    string         `json:"created_by"`
	UpdatedBy    string         `json:"updated_by"`
}

type appointmentPayload struct {
	TargetUserID       string   `json:"target_user_id"`
	UserAvailabilityID string   `json:"user_availability_id"`
	Date               string   `json:"date"`
	Time               string   `json:"time"`
	Duration           int      `json:"duration"`
	AppointmentAgenda  []string `json:"appointment_agenda"`
	CreatorName        string   `json:"creator_name"`
	Notes              string   `json:"notes"`
	Reason             string   `json:"reason"`
	LoggedInUserID     string   `json:"loggedin_user_id"`
	IsVirtual          bool     `json:"is_virtual"`
	LocationName       string   `json:"location_name"`
	MeetingLink        string   `json:"meeting_link,omitempty"`
	Tags               []string `json:"tags"`
	ClientID           string   `json:"client_id,omitempty"`
	DepartmentID       string   `json:"department_id,omitempty"`
	LocationID         string   `json:"location_id,omitempty"`
	CreatedBy          string   `json:"created_by,omitempty"`
}

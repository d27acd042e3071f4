package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gramseva/sahayak/internal/backend"
	"github.com/gramseva/sahayak/internal/observability/metrics"
	"github.com/gramseva/sahayak/pkg/logging"
)

// Backend is the outbound service surface the orchestrator dispatches to.
// Read operations degrade to empty results on failure; write operations
// return an error on anything but a 2xx.
type Backend interface {
	ListServices(ctx context.Context, token string) (json.RawMessage, error)
	SearchNearby(ctx context.Context, token string, params backend.NearbyParams) (json.RawMessage, error)
	Availability(ctx context.Context, token, userID string) (json.RawMessage, error)
	CreateTask(ctx context.Context, token string, in backend.CreateTaskInput) (json.RawMessage, error)
	CreateAppointment(ctx context.Context, token string, in backend.CreateAppointmentInput) (json.RawMessage, error)
}

// Turn outcomes reported to metrics.
const (
	outcomeInvalidLocation = "invalid_location"
	outcomeLLMError        = "llm_error"
	outcomeMalformed       = "malformed_model_output"
	outcomeDirect          = "direct_response"
	outcomeFunctionCall    = "function_call"
	outcomeUnauthenticated = "unauthenticated"
)

// Options tune the per-turn defaulting rules.
type Options struct {
	LanguageThreshold float64
	NearbyRadiusKm    float64
	NearbyPageSize    int
	TaskDueDays       int
	Timezone          *time.Location
}

// Orchestrator runs one conversational turn end to end: context assembly,
// the analysis model call, backend dispatch with defaulting rules, the
// formatting model call, and history persistence.
type Orchestrator struct {
	llm     LLMClient
	backend Backend
	store   *SessionStore
	metrics *metrics.ConversationMetrics
	logger  *logging.Logger
	opts    Options

	now func() time.Time
}

func NewOrchestrator(llm LLMClient, be Backend, store *SessionStore, m *metrics.ConversationMetrics, logger *logging.Logger, opts Options) *Orchestrator {
	if opts.LanguageThreshold <= 0 {
		opts.LanguageThreshold = DefaultLanguageThreshold
	}
	if opts.NearbyRadiusKm <= 0 {
		opts.NearbyRadiusKm = 20
	}
	if opts.NearbyPageSize <= 0 {
		opts.NearbyPageSize = 2
	}
	if opts.TaskDueDays <= 0 {
		opts.TaskDueDays = 7
	}
	if opts.Timezone == nil {
		opts.Timezone = time.UTC
	}
	return &Orchestrator{
		llm:     llm,
		backend: be,
		store:   store,
		metrics: m,
		logger:  logger,
		opts:    opts,
		now:     time.Now,
	}
}

// HandleQuery processes one turn. It never returns an error: every failure
// mode maps to a localized user-facing message.
func (o *Orchestrator) HandleQuery(ctx context.Context, req QueryRequest) QueryResponse {
	lang := DetectLanguage(req.Query, o.opts.LanguageThreshold)

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(req.Latitude), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(req.Longitude), 64)
	if latErr != nil || lonErr != nil {
		o.metrics.ObserveTurn(outcomeInvalidLocation)
		return locationErrorReply(lang)
	}

	token := strings.TrimSpace(strings.TrimPrefix(req.Authorization, "Bearer "))

	o.store.Touch(ctx, req.UserID)

	history, err := o.store.History(ctx, req.UserID)
	if err != nil {
		o.logger.Warn("failed to load conversation history", "user_id", req.UserID, "error", err)
		history = nil
	}
	pending, err := o.store.PendingAppointment(ctx, req.UserID)
	if err != nil {
		o.logger.Warn("failed to load pending appointment", "user_id", req.UserID, "error", err)
		pending = PendingAppointment{}
	}
	pending = o.absorbSchedule(ctx, req.UserID, req.Query, pending)

	now := o.now().In(o.opts.Timezone)
	prompt := buildAnalysisPrompt(analysisContext{
		Query:    req.Query,
		UserID:   req.UserID,
		Lat:      lat,
		Lon:      lon,
		Language: lang,
		Now:      now,
		Pending:  pending,
		History:  history,
	})

	result, err := o.generate(ctx, "analyze", GenerateRequest{Prompt: prompt, History: history})
	if err != nil {
		o.logger.Error("analysis model call failed", "user_id", req.UserID, "error", err)
		o.metrics.ObserveTurn(outcomeLLMError)
		return serviceUnavailableReply(lang)
	}

	userTurn := Turn{Role: RoleUser, Text: req.Query}

	call := result.FunctionCall
	if call == nil {
		out, perr := ParseModelOutput(result.Text)
		if perr != nil {
			o.logger.Warn("model output unparseable", "user_id", req.UserID, "error", perr)
			o.metrics.ObserveTurn(outcomeMalformed)
			reply := defaultReply(lang)
			o.saveHistory(ctx, req.UserID, append(history, userTurn, modelTurn(reply)))
			return reply
		}
		if out.Response != nil {
			o.metrics.ObserveTurn(outcomeDirect)
			reply := QueryResponse{Response: *out.Response}
			o.saveHistory(ctx, req.UserID, append(history, userTurn, modelTurn(reply)))
			return reply
		}
		call = out.FunctionCall
	}

	return o.dispatch(ctx, dispatchContext{
		req:     req,
		lang:    lang,
		token:   token,
		lat:     lat,
		lon:     lon,
		now:     now,
		history: history,
		pending: pending,
		call:    call,
	})
}

// dispatchContext bundles the per-turn state the function dispatcher needs.
type dispatchContext struct {
	req     QueryRequest
	lang    string
	token   string
	lat     float64
	lon     float64
	now     time.Time
	history []Turn
	pending PendingAppointment
	call    *FunctionCall
}

// dispatch executes the model-requested function, commits the call and its
// raw result to history, and produces the final user-facing message.
func (o *Orchestrator) dispatch(ctx context.Context, dc dispatchContext) QueryResponse {
	o.metrics.ObserveTurn(outcomeFunctionCall)

	var (
		fnResult json.RawMessage
		direct   *QueryResponse
		err      error
	)
	switch dc.call.Name {
	case FnListServices:
		fnResult, err = o.listServices(ctx, dc)
	case FnNearbyServices:
		fnResult, err = o.nearbyServices(ctx, dc)
	case FnUserAvailability:
		fnResult, err = o.userAvailability(ctx, dc)
	case FnCreateTask:
		fnResult, direct, err = o.createTask(ctx, dc)
	case FnCreateAppointment:
		fnResult, direct, err = o.createAppointment(ctx, dc)
	default:
		fnResult = mustJSON(map[string]string{"error": fmt.Sprintf("unknown function: %s", dc.call.Name)})
		o.metrics.ObserveFunctionCall(dc.call.Name, "unknown")
	}
	if errors.Is(err, backend.ErrNoToken) {
		o.metrics.ObserveFunctionCall(dc.call.Name, "unauthenticated")
		o.metrics.ObserveTurn(outcomeUnauthenticated)
		reply := unauthenticatedReply(dc.lang)
		o.saveHistory(ctx, dc.req.UserID, append(dc.history,
			Turn{Role: RoleUser, Text: dc.req.Query}, modelTurn(reply)))
		return reply
	}

	next := append(dc.history,
		Turn{Role: RoleUser, Text: dc.req.Query},
		Turn{Role: RoleModel, FunctionCall: dc.call},
		Turn{Role: RoleFunction, FunctionResponse: &FunctionResponse{Name: dc.call.Name, Response: fnResult}},
	)

	if direct != nil {
		o.saveHistory(ctx, dc.req.UserID, append(next, modelTurn(*direct)))
		return *direct
	}

	reply := o.formatResult(ctx, dc, fnResult, next)
	o.saveHistory(ctx, dc.req.UserID, append(next, modelTurn(reply)))
	return reply
}

// formatResult runs the second model call that turns a raw function result
// into conversational text. Parse failures fall back to the default reply.
func (o *Orchestrator) formatResult(ctx context.Context, dc dispatchContext, fnResult json.RawMessage, history []Turn) QueryResponse {
	result, err := o.generate(ctx, "format", GenerateRequest{
		Prompt:  buildFormatPrompt(fnResult, dc.lang),
		History: history,
	})
	if err != nil {
		o.logger.Error("format model call failed", "user_id", dc.req.UserID, "error", err)
		return serviceUnavailableReply(dc.lang)
	}
	if result.FunctionCall != nil {
		return defaultReply(dc.lang)
	}
	out, err := ParseModelOutput(result.Text)
	if err != nil || out.Response == nil {
		o.logger.Warn("format output unparseable", "user_id", dc.req.UserID, "error", err)
		return defaultReply(dc.lang)
	}
	return QueryResponse{Response: *out.Response}
}

func (o *Orchestrator) listServices(ctx context.Context, dc dispatchContext) (json.RawMessage, error) {
	raw, err := o.backend.ListServices(ctx, dc.token)
	if err != nil {
		return nil, err
	}
	o.metrics.ObserveFunctionCall(FnListServices, "ok")
	return mustJSON(map[string]json.RawMessage{"services": raw}), nil
}

func (o *Orchestrator) userAvailability(ctx context.Context, dc dispatchContext) (json.RawMessage, error) {
	raw, err := o.backend.Availability(ctx, dc.token, argString(dc.call.Args, "user_id_of_person"))
	if err != nil {
		return nil, err
	}
	o.metrics.ObserveFunctionCall(FnUserAvailability, "ok")
	return mustJSON(map[string]json.RawMessage{"user_availability": raw}), nil
}

// nearbyServices always searches with the validated request coordinates,
// never the model-proposed ones, and consults the per-user cache first.
func (o *Orchestrator) nearbyServices(ctx context.Context, dc dispatchContext) (json.RawMessage, error) {
	userName := strings.TrimSpace(argString(dc.call.Args, "user_name"))
	tagName := NormalizeTag(argString(dc.call.Args, "tagName"))
	// At most one filter per search; a name beats a role tag.
	if userName != "" {
		tagName = ""
	}
	key := SearchKey(userName, tagName, dc.lat, dc.lon)

	if cached, ok, err := o.store.CachedSearch(ctx, dc.req.UserID, key); err == nil && ok {
		o.metrics.ObserveSearchCache(true)
		o.metrics.ObserveFunctionCall(FnNearbyServices, "cache_hit")
		return mustJSON(map[string]json.RawMessage{"nearby_services": cached}), nil
	}
	o.metrics.ObserveSearchCache(false)

	raw, err := o.backend.SearchNearby(ctx, dc.token, backend.NearbyParams{
		Latitude:  dc.lat,
		Longitude: dc.lon,
		Page:      argIntDefault(dc.call.Args, "page", 1),
		RadiusKm:  argFloatDefault(dc.call.Args, "radius_km", o.opts.NearbyRadiusKm),
		PageSize:  argIntDefault(dc.call.Args, "page_size", o.opts.NearbyPageSize),
		UserName:  userName,
		TagName:   tagName,
	})
	if err != nil {
		return nil, err
	}
	if err := o.store.CacheSearch(ctx, dc.req.UserID, key, raw); err != nil {
		o.logger.Warn("failed to cache search result", "user_id", dc.req.UserID, "error", err)
	}
	o.metrics.ObserveFunctionCall(FnNearbyServices, "ok")
	return mustJSON(map[string]json.RawMessage{"nearby_services": raw}), nil
}

// createTask recovers the assignee from the most recent successful nearby
// search in history and infers details and priority from recent user turns.
// Without a prior lookup it short-circuits with a guidance message.
func (o *Orchestrator) createTask(ctx context.Context, dc dispatchContext) (json.RawMessage, *QueryResponse, error) {
	provider, ok := lastNearbyProvider(dc.history)
	if !ok {
		o.metrics.ObserveFunctionCall(FnCreateTask, "no_provider")
		reply := personNotFoundReply(dc.lang)
		return mustJSON(map[string]string{"error": "no provider found in conversation history"}), &reply, nil
	}

	priority := historyPriority(dc.history)
	raw, err := o.backend.CreateTask(ctx, dc.token, backend.CreateTaskInput{
		Title:        argStringDefault(dc.call.Args, "title", "Road Maintenance Task"),
		TaskType:     argStringDefault(dc.call.Args, "task_type", "maintenance"),
		TaskDetails:  historyTaskDetails(dc.history),
		AssignedTo:   provider.UserID,
		StartDate:    dc.now.Format("2006-01-02"),
		DueDate:      dc.now.AddDate(0, 0, o.opts.TaskDueDays).Format("2006-01-02"),
		Tags:         []string{"maintenance", "roads", priority},
		ClientID:     provider.UserMapping.ClientID,
		DepartmentID: provider.UserMapping.DepartmentID,
		LocationID:   provider.UserMapping.LocationID,
		CreatedBy:    dc.req.UserID,
	})
	if errors.Is(err, backend.ErrNoToken) {
		return nil, nil, err
	}
	if err != nil {
		o.logger.Error("task creation failed", "user_id", dc.req.UserID, "error", err)
		o.metrics.ObserveFunctionCall(FnCreateTask, "error")
		reply := taskFailedReply(dc.lang)
		return mustJSON(map[string]any{"success": false, "error": "task creation failed"}), &reply, nil
	}
	o.metrics.ObserveFunctionCall(FnCreateTask, "ok")
	reply := taskCreatedReply(dc.lang, provider.FirstName, provider.LastName, priority)
	return raw, &reply, nil
}

// createAppointment prefers date/time/duration accumulated in the pending
// fields over model-supplied arguments and clears them once booking succeeds.
func (o *Orchestrator) createAppointment(ctx context.Context, dc dispatchContext) (json.RawMessage, *QueryResponse, error) {
	date := dc.pending.Date
	if date == "" {
		date = argString(dc.call.Args, "date")
	}
	clock := dc.pending.Time
	if clock == "" {
		clock = argString(dc.call.Args, "time")
	}
	duration := dc.pending.Duration
	if duration == 0 {
		duration = argIntDefault(dc.call.Args, "duration", 30)
	}
	reason := argString(dc.call.Args, "reason")

	raw, err := o.backend.CreateAppointment(ctx, dc.token, backend.CreateAppointmentInput{
		TargetUserID:       argString(dc.call.Args, "target_user_id"),
		UserAvailabilityID: argString(dc.call.Args, "user_availability_id"),
		Date:               date,
		Time:               clock,
		Duration:           duration,
		Agenda:             []string{reason},
		CreatorName:        argStringDefault(dc.call.Args, "creator_name", "User"),
		Notes:              argString(dc.call.Args, "notes"),
		Reason:             reason,
		LoggedInUserID:     dc.req.UserID,
		ClientID:           argString(dc.call.Args, "client_id"),
		DepartmentID:       argString(dc.call.Args, "department_id"),
		LocationID:         argString(dc.call.Args, "location_id"),
		CreatedBy:          dc.req.UserID,
	})
	if errors.Is(err, backend.ErrNoToken) {
		return nil, nil, err
	}
	if err != nil {
		o.logger.Error("appointment creation failed", "user_id", dc.req.UserID, "error", err)
		o.metrics.ObserveFunctionCall(FnCreateAppointment, "error")
		reply := appointmentFailedReply(dc.lang)
		return mustJSON(map[string]any{"success": false, "error": "appointment creation failed"}), &reply, nil
	}
	o.metrics.ObserveFunctionCall(FnCreateAppointment, "ok")
	if err := o.store.ClearPendingAppointment(ctx, dc.req.UserID); err != nil {
		o.logger.Warn("failed to clear pending appointment", "user_id", dc.req.UserID, "error", err)
	}
	return raw, nil, nil
}

// absorbSchedule extracts date/time/duration from a scheduling-flavored query
// into the pending fields for later appointment creation. Only a complete
// date+time+duration parse is stored; a bare date is left for the model to
// ask about.
func (o *Orchestrator) absorbSchedule(ctx context.Context, userID, query string, pending PendingAppointment) PendingAppointment {
	if !HasSchedulingIntent(query) {
		return pending
	}
	sched, ok := ParseSchedule(query)
	if !ok || sched.Time == "" || sched.Duration <= 0 {
		return pending
	}
	pending = PendingAppointment{Date: sched.Date, Time: sched.Time, Duration: sched.Duration}
	if err := o.store.SavePendingAppointment(ctx, userID, pending); err != nil {
		o.logger.Warn("failed to save pending appointment", "user_id", userID, "error", err)
	}
	return pending
}

func (o *Orchestrator) generate(ctx context.Context, phase string, req GenerateRequest) (GenerateResult, error) {
	start := time.Now()
	result, err := o.llm.Generate(ctx, req)
	o.metrics.ObserveLLMLatency(phase, time.Since(start).Seconds())
	return result, err
}

func (o *Orchestrator) saveHistory(ctx context.Context, userID string, history []Turn) {
	if err := o.store.SaveHistory(ctx, userID, history); err != nil {
		o.logger.Error("failed to persist conversation history", "user_id", userID, "error", err)
	}
}

func modelTurn(reply QueryResponse) Turn {
	return Turn{Role: RoleModel, Text: reply.Response.Message}
}

// lastNearbyProvider walks the history backward for the most recent
// successful nearby-search result and returns its first provider row.
func lastNearbyProvider(history []Turn) (backend.Provider, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		turn := history[i]
		if turn.Role != RoleFunction || turn.FunctionResponse == nil || turn.FunctionResponse.Name != FnNearbyServices {
			continue
		}
		var envelope struct {
			NearbyServices backend.NearbyResult `json:"nearby_services"`
		}
		if err := json.Unmarshal(turn.FunctionResponse.Response, &envelope); err != nil {
			continue
		}
		if envelope.NearbyServices.Success && len(envelope.NearbyServices.Data.Users) > 0 {
			return envelope.NearbyServices.Data.Users[0], true
		}
	}
	return backend.Provider{}, false
}

// historyTaskDetails collects up to the last three user turns mentioning
// road/maintenance problems, oldest first.
func historyTaskDetails(history []Turn) string {
	var details []string
	for i := len(history) - 1; i >= 0 && len(details) < 3; i-- {
		turn := history[i]
		if turn.Role != RoleUser {
			continue
		}
		text := strings.ToLower(turn.Text)
		if strings.Contains(text, "road") || strings.Contains(text, "bad") || strings.Contains(text, "maintenance") {
			details = append(details, text)
		}
	}
	if len(details) == 0 {
		return "Road maintenance work in the area"
	}
	for i, j := 0, len(details)-1; i < j; i, j = i+1, j-1 {
		details[i], details[j] = details[j], details[i]
	}
	return strings.Join(details, " ")
}

// historyPriority infers task priority from the most recent user turn that
// carries an urgency cue.
func historyPriority(history []Turn) string {
	for i := len(history) - 1; i >= 0; i-- {
		turn := history[i]
		if turn.Role != RoleUser {
			continue
		}
		text := strings.ToLower(turn.Text)
		switch {
		case strings.Contains(text, "high"), strings.Contains(text, "urgent"), strings.Contains(text, "very bad"):
			return "high"
		case strings.Contains(text, "low"):
			return "low"
		}
	}
	return "medium"
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return b
}

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func argStringDefault(args map[string]any, key, fallback string) string {
	if v := strings.TrimSpace(argString(args, key)); v != "" {
		return v
	}
	return fallback
}

func argIntDefault(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		if v > 0 {
			return int(v)
		}
	case int:
		if v > 0 {
			return v
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func argFloatDefault(args map[string]any, key string, fallback float64) float64 {
	switch v := args[key].(type) {
	case float64:
		if v > 0 {
			return v
		}
	case int:
		if v > 0 {
			return float64(v)
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}

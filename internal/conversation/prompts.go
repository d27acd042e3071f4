package conversation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// analysisContext carries everything the first model call needs to decide
// between a direct answer and a function call.
type analysisContext struct {
	Query    string
	UserID   string
	Lat      float64
	Lon      float64
	Language string
	Now      time.Time
	Pending  PendingAppointment
	History  []Turn
}

// Transcript renders the text turns of a history as "role: content" lines for
// embedding in prompts.
func Transcript(history []Turn) string {
	if len(history) == 0 {
		return "No previous conversation."
	}
	var lines []string
	for _, turn := range history {
		if turn.Text != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", turn.Role, turn.Text))
		}
	}
	if len(lines) == 0 {
		return "No previous conversation."
	}
	return strings.Join(lines, "\n")
}

func languageName(lang string) string {
	if lang == LanguageMarathi {
		return "Marathi"
	}
	return "English"
}

func buildAnalysisPrompt(c analysisContext) string {
	pending, _ := json.Marshal(c.Pending)
	return fmt.Sprintf(`You are a friendly and helpful assistant that engages in natural conversation while efficiently handling tasks.

LANGUAGE REQUIREMENT:
- User's language: %s
- You MUST respond in the same language as the user's query.
- For Marathi, respond in Marathi using Roman script.

CURRENT CONTEXT:
- Current Date: %s
- Current Day: %s
- Current Time: %s
- Logged-in User ID: %s
- Location: %v, %v
- Appointment Context: %s

CONVERSATION RULES:
1. Maintain context from previous messages: the last mentioned person, their details, collected appointment or task information, and user preferences.
2. NEVER ask for information already provided and NEVER search for a person again once found in the conversation history.
3. Answer general questions (recipes, facts, casual conversation, weather, travel and so on) naturally without calling a function.
4. Handle spelling mistakes and variations in dates, times and durations; proceed with the most likely intended meaning instead of asking for corrections.
5. NEVER reveal internal identifiers of any kind.

AVAILABLE FUNCTIONS:
1. get_nearby_services(user_name | tagName, latitude, longitude) - call IMMEDIATELY when the user asks about a person by name or about a role such as doctor or MLA. Use user_name for names, tagName for roles, NEVER both. Always use the current location %v, %v. Must be called before any other person-related function.
2. get_all_services() - call when the user asks what services are available.
3. get_user_availability(user_id_of_person) - call only after the person has been found with get_nearby_services. Use the last mentioned person's ID from the conversation history. Afterwards ask whether to book an appointment.
4. create_task(title, task_type, ...) - call when the user wants a task created and the reason and details are known. Use the logged-in user ID %s as creator; gather details and priority from the conversation.
5. create_appointment(target_user_id, user_availability_id, date, time, duration, reason, ...) - call when the user confirms appointment details. Use values from the appointment context and conversation history; ask only for what is still missing.

RESPONSE FORMAT - reply with EXACTLY one JSON object, nothing else:
For conversation: {"response": {"message": "your reply here", "profile": null}}
For an action:    {"functionCall": {"name": "function_name", "args": {"param": "value"}}}

CONVERSATION HISTORY:
%s

Current user query: %s`,
		languageName(c.Language),
		c.Now.Format("2006-01-02"),
		c.Now.Format("Monday"),
		c.Now.Format("15:04:05"),
		c.UserID,
		c.Lat, c.Lon,
		pending,
		c.Lat, c.Lon,
		c.UserID,
		Transcript(c.History),
		c.Query,
	)
}

func buildFormatPrompt(functionResult json.RawMessage, lang string) string {
	return fmt.Sprintf(`Based on the function response below, create a natural, conversational message. Follow these rules:
1. NEVER show any internal IDs (user_id, location_id, availability_id, task_id, appointment_id) in the response.
2. Be friendly and helpful, with proper pronouns (their/his/her).
3. Always propose the logical next action: after finding a person, offer to schedule an appointment; after checking availability, ask for any missing date, time or duration; after booking or creating something, offer further help.
4. If a search found nobody, say so and offer to try a different search.
5. If a mutation failed, apologize and invite the user to try again. Never report success for a failed operation.

RESPONSE LANGUAGE: respond in %s.

Reply with EXACTLY one JSON object of this shape, nothing else:
{"response": {"message": "your natural response here", "profile": [{"name": "full name", "email": "email address", "phone_number": "phone number", "designation": "role name"}]}}
Set "profile" to null unless the function response contains provider details worth surfacing.

Function response:
%s`,
		formatLanguageDirective(lang),
		functionResult,
	)
}

func formatLanguageDirective(lang string) string {
	if lang == LanguageMarathi {
		return "Marathi using Roman script (English letters) only"
	}
	return "English"
}

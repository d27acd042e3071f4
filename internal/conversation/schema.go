package conversation

import "github.com/google/generative-ai-go/genai"

// assistantTools declares the five backend operations to the model. Argument
// contracts mirror the backend REST API; policy about when to call what lives
// in the analysis prompt.
var assistantTools = []*genai.Tool{{
	FunctionDeclarations: []*genai.FunctionDeclaration{
		{
			Name:        FnListServices,
			Description: "Get the list of all available service categories and subcategories",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{},
			},
		},
		{
			Name:        FnNearbyServices,
			Description: "Find nearby service providers based on location and optional filters.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"latitude":  {Type: genai.TypeNumber, Description: "Latitude coordinate"},
					"longitude": {Type: genai.TypeNumber, Description: "Longitude coordinate"},
					"page":      {Type: genai.TypeInteger, Description: "Page number for pagination"},
					"radius_km": {Type: genai.TypeNumber, Description: "Search radius in kilometers"},
					"page_size": {Type: genai.TypeInteger, Description: "Number of items per page"},
					"user_name": {Type: genai.TypeString, Description: "Optional person name to filter providers"},
					"tagName":   {Type: genai.TypeString, Description: "Optional role tag to filter providers"},
				},
				Required: []string{"latitude", "longitude"},
			},
		},
		{
			Name:        FnUserAvailability,
			Description: "Check the availability of a specific service provider.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"user_id_of_person": {Type: genai.TypeString, Description: "ID of the person whose availability to check"},
				},
				Required: []string{"user_id_of_person"},
			},
		},
		{
			Name:        FnCreateTask,
			Description: "Create a new task for a service provider.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":         {Type: genai.TypeString, Description: "Title of the task"},
					"task_type":     {Type: genai.TypeString, Description: "Type of task, e.g. Maintenance or Service"},
					"task_details":  {Type: genai.TypeString, Description: "Detailed description of the task"},
					"assigned_to":   {Type: genai.TypeString, Description: "ID of the person the task is assigned to"},
					"start_date":    {Type: genai.TypeString, Description: "Start date (ISO format)"},
					"due_date":      {Type: genai.TypeString, Description: "Due date (ISO format)"},
					"tags":          {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Tags, include the priority level"},
					"client_id":     {Type: genai.TypeString, Description: "Client ID from the service provider"},
					"department_id": {Type: genai.TypeString, Description: "Department ID from the service provider"},
					"location_id":   {Type: genai.TypeString, Description: "Location ID from the service provider"},
					"created_by":    {Type: genai.TypeString, Description: "ID of the user creating the task"},
				},
				Required: []string{"title", "task_type", "task_details"},
			},
		},
		{
			Name:        FnCreateAppointment,
			Description: "Create a new appointment with a service provider.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"target_user_id":       {Type: genai.TypeString, Description: "ID of the person to meet with"},
					"user_availability_id": {Type: genai.TypeString, Description: "ID of the availability slot"},
					"date":                 {Type: genai.TypeString, Description: "Date of the appointment (YYYY-MM-DD)"},
					"time":                 {Type: genai.TypeString, Description: "Time of the appointment"},
					"duration":             {Type: genai.TypeInteger, Description: "Duration in minutes"},
					"appointment_agenda":   {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Topics to discuss"},
					"creator_name":         {Type: genai.TypeString, Description: "Name of the appointment creator"},
					"notes":                {Type: genai.TypeString, Description: "Additional notes"},
					"reason":               {Type: genai.TypeString, Description: "Reason for the appointment"},
					"client_id":            {Type: genai.TypeString, Description: "Client ID from the service provider"},
					"department_id":        {Type: genai.TypeString, Description: "Department ID from the service provider"},
					"location_id":          {Type: genai.TypeString, Description: "Location ID from the service provider"},
				},
				Required: []string{"target_user_id", "user_availability_id", "reason"},
			},
		},
	},
}}

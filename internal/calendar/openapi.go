package calendar

import "github.com/JaimeStill/consult/pkg/openapi"

type spec struct {
	Grid *openapi.Operation
}

// Spec documents the calendar endpoint.
var Spec = spec{
	Grid: &openapi.Operation{
		Summary:     "Calendar grid",
		Description: "Monday-first week or month grid of consultation deadlines around an anchor date.",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("date", "string", "Anchor date (YYYY-MM-DD); defaults to today", false),
			{Name: "view", In: "query", Description: "Grid view", Schema: openapi.Enum("View", string(ViewWeek), string(ViewMonth))},
			{Name: "nav", In: "query", Description: "Navigation applied to the anchor", Schema: openapi.Enum("Navigation", NavPrev, NavNext, NavToday)},
			openapi.QueryParam("pending_only", "boolean", "Hide resolved consultations", false),
			openapi.QueryParam("company", "string", "Company contains (case-insensitive)", false),
			openapi.QueryParam("assigned_officer", "string", "Assigned officer id", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Calendar grid", "CalendarGrid"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
}

// Schemas returns the component schemas of the calendar.
func Schemas() map[string]*openapi.Schema {
	date := func() *openapi.Schema { return &openapi.Schema{Type: "string", Format: "date"} }

	return map[string]*openapi.Schema{
		"CalendarCard": {
			Type:        "object",
			Description: "Consultation fields plus urgency, days_remaining and decision_label",
			Properties: map[string]*openapi.Schema{
				"id":             {Type: "string", Format: "uuid"},
				"company":        {Type: "string"},
				"project":        {Type: "string"},
				"deadline":       date(),
				"urgency":        {Type: "string"},
				"days_remaining": {Type: "integer"},
				"decision_label": {Type: "string"},
			},
		},
		"CalendarCell": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"date":             date(),
				"key":              {Type: "string"},
				"is_today":         {Type: "boolean"},
				"in_current_month": {Type: "boolean"},
				"consultations":    {Type: "array", Items: openapi.SchemaRef("CalendarCard")},
				"inline":           {Type: "array", Items: openapi.SchemaRef("CalendarCard")},
				"overflow":         {Type: "integer"},
			},
		},
		"CalendarGrid": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"view":   {Type: "string"},
				"anchor": date(),
				"label":  {Type: "string"},
				"range": {
					Type:       "object",
					Properties: map[string]*openapi.Schema{"start": date(), "end": date()},
				},
				"weeks": {
					Type:  "array",
					Items: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("CalendarCell")},
				},
				"total":       {Type: "integer"},
				"prev_anchor": date(),
				"next_anchor": date(),
			},
		},
	}
}

package dashboard

import "github.com/JaimeStill/consult/pkg/openapi"

type spec struct {
	Get *openapi.Operation
}

// Spec documents the dashboard endpoint.
var Spec = spec{
	Get: &openapi.Operation{
		Summary:     "Role dashboard",
		Description: "Exactly one of simplified, admin, officer or leadership is set according to role.",
		Parameters: []*openapi.Parameter{
			{
				Name: "role", In: "query", Description: "Dashboard role; defaults to simplified",
				Schema: openapi.Enum("Role", string(RoleSimplified), string(RoleAdmin), string(RoleOfficer), string(RoleLeadership)),
			},
			openapi.QueryParam("officer_id", "string", "Officer id; required for the officer role", false),
			openapi.QueryParam("search", "string", "Search company and project", false),
			openapi.QueryParam("include_sent", "boolean", "Keep email-sent consultations in the review queue", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Dashboard", "Dashboard"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
}

// Schemas returns the component schemas of the dashboards.
func Schemas() map[string]*openapi.Schema {
	rows := func() *openapi.Schema {
		return &openapi.Schema{Type: "array", Items: openapi.SchemaRef("ConsultationRow")}
	}
	integer := func() *openapi.Schema { return &openapi.Schema{Type: "integer"} }
	counts := func() *openapi.Schema {
		return &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Count")}
	}

	return map[string]*openapi.Schema{
		"Money": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"cents":   integer(),
				"display": {Type: "string", Example: "$5,000.00"},
			},
		},
		"Count": {
			Type:       "object",
			Properties: map[string]*openapi.Schema{"name": {Type: "string"}, "count": integer()},
		},
		"Breakdown": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"endorsed": integer(), "conditional": integer(), "not_endorsed": integer(),
				"pending": integer(), "none": integer(),
			},
		},
		"Dashboard": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"role":         {Type: "string"},
				"generated_at": {Type: "string", Format: "date-time"},
				"simplified": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"active": integer(), "overdue": integer(), "urgent": integer(),
						"email_sent": integer(), "queue": rows(),
					},
				},
				"admin": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"total": integer(), "action_needed": integer(), "overdue": integer(),
						"completed": integer(), "completion_rate": integer(),
						"decisions":      openapi.SchemaRef("Breakdown"),
						"fees_collected": openapi.SchemaRef("Money"),
						"fees_pending":   openapi.SchemaRef("Money"),
						"upcoming":       rows(),
						"consultations":  rows(),
					},
				},
				"officer": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"officer_id": {Type: "string"}, "officer_name": {Type: "string"},
						"assigned": integer(), "action_needed": integer(), "completed": integer(),
						"due_soon": integer(), "completion_rate": integer(),
						"upcoming": rows(), "pending": rows(), "decided": rows(),
					},
				},
				"leadership": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"total": integer(), "active": integer(), "completed": integer(),
						"completion_rate": integer(),
						"revenue":         openapi.SchemaRef("Money"),
						"decisions":       openapi.SchemaRef("Breakdown"),
						"project_types":   counts(),
						"top_companies":   counts(),
						"upcoming":        rows(),
						"monthly_volume": {
							Type: "array",
							Items: &openapi.Schema{
								Type: "object",
								Properties: map[string]*openapi.Schema{
									"month": {Type: "string"}, "label": {Type: "string"}, "count": integer(),
								},
							},
						},
						"recent": rows(),
					},
				},
			},
		},
	}
}

package consultations

import (
	"maps"

	"github.com/JaimeStill/consult/pkg/openapi"
)

type spec struct {
	List           *openapi.Operation
	Create         *openapi.Operation
	Search         *openapi.Operation
	Queue          *openapi.Operation
	Export         *openapi.Operation
	Decisions      *openapi.Operation
	Find           *openapi.Operation
	UpdateDecision *openapi.Operation
}

var filterParams = []*openapi.Parameter{
	openapi.QueryParam("decision", "string", "Decision filter; pending also matches no decision", false),
	openapi.QueryParam("email_sent", "boolean", "Email sent filter", false),
	openapi.QueryParam("company", "string", "Company contains (case-insensitive)", false),
	openapi.QueryParam("assigned_officer", "string", "Assigned officer id", false),
	openapi.QueryParam("project_type", "string", "Project type", false),
	openapi.QueryParam("payment_status", "string", "Payment status", false),
	openapi.QueryParam("deadline_from", "string", "Earliest deadline (YYYY-MM-DD)", false),
	openapi.QueryParam("deadline_to", "string", "Latest deadline (YYYY-MM-DD)", false),
}

func withFilters(params ...*openapi.Parameter) []*openapi.Parameter {
	return append(params, filterParams...)
}

// Spec documents the consultation endpoints.
var Spec = spec{
	List: &openapi.Operation{
		Summary: "List consultations",
		Parameters: withFilters(
			openapi.QueryParam("page", "integer", "Page number", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Search company and project", false),
			openapi.QueryParam("sort", "string", "Sort fields, e.g. deadline,-created_at", false),
		),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page of annotated consultations", "ConsultationPage"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Create: &openapi.Operation{
		Summary:     "Register a consultation",
		RequestBody: openapi.RequestBodyJSON("CreateConsultation", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Created consultation", "ConsultationRow"),
			400: openapi.ResponseRef("BadRequest"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	Search: &openapi.Operation{
		Summary:     "Search consultations",
		RequestBody: openapi.RequestBodyJSON("ConsultationSearch", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page of annotated consultations", "ConsultationPage"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Queue: &openapi.Operation{
		Summary:     "Review queue",
		Description: "Unsent consultations, undecided first, soonest deadline first.",
		Parameters: withFilters(
			openapi.QueryParam("search", "string", "Search company and project", false),
			openapi.QueryParam("include_sent", "boolean", "Include consultations whose email was sent", false),
		),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseArrayJSON("Annotated consultations in review order", "ConsultationRow"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Export: &openapi.Operation{
		Summary:    "Export consultations",
		Parameters: withFilters(),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseArrayJSON("Consultations ordered by deadline", "Consultation"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Decisions: &openapi.Operation{
		Summary: "List decision options",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseArrayJSON("Decision values and labels", "DecisionOption"),
		},
	},
	Find: &openapi.Operation{
		Summary:    "Find a consultation",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Consultation id")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Annotated consultation", "ConsultationRow"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	UpdateDecision: &openapi.Operation{
		Summary:     "Record a decision",
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Consultation id")},
		RequestBody: openapi.RequestBodyJSON("DecisionCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Updated consultation", "ConsultationRow"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

func decisionSchema() *openapi.Schema {
	values := make([]string, 0, len(Decisions()))
	for _, d := range Decisions() {
		values = append(values, string(d))
	}
	return openapi.Enum("Decision; null when none is recorded", values...)
}

// Schemas returns the component schemas of the consultation domain.
func Schemas() map[string]*openapi.Schema {
	consultation := map[string]*openapi.Schema{
		"id":               {Type: "string", Format: "uuid"},
		"company":          {Type: "string"},
		"project":          {Type: "string"},
		"project_type":     {Type: "string"},
		"contact_email":    {Type: "string", Format: "email"},
		"deadline":         {Type: "string", Format: "date"},
		"decision":         decisionSchema(),
		"email_sent":       {Type: "boolean"},
		"email_sent_at":    {Type: "string", Format: "date-time"},
		"email_id":         {Type: "string"},
		"assigned_officer": {Type: "string"},
		"officer_name":     {Type: "string"},
		"consultation_fee": {Type: "integer", Description: "Fee in cents"},
		"payment_status":   openapi.Enum("Payment status", string(PaymentPending), string(PaymentPaid)),
		"created_at":       {Type: "string", Format: "date-time"},
		"updated_at":       {Type: "string", Format: "date-time"},
	}

	row := maps.Clone(consultation)
	row["days_remaining"] = &openapi.Schema{Type: "integer"}
	row["status"] = openapi.Enum("Badge status",
		string(StatusCompleted), string(StatusOverdue), string(StatusDueSoon), string(StatusPending))
	row["urgency"] = openapi.Enum("Urgency",
		string(UrgencyCompleted), string(UrgencyOverdue), string(UrgencyDueToday),
		string(UrgencyActionRequired), string(UrgencyNormal))
	row["email_action"] = openapi.Enum("Email affordance",
		string(EmailActionSent), string(EmailActionDecideFirst), string(EmailActionSending),
		string(EmailActionDraft), string(EmailActionSend))
	row["decision_label"] = &openapi.Schema{Type: "string"}

	return map[string]*openapi.Schema{
		"Consultation":    {Type: "object", Properties: consultation},
		"ConsultationRow": {Type: "object", Properties: row},
		"ConsultationPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        {Type: "array", Items: openapi.SchemaRef("ConsultationRow")},
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
		"CreateConsultation": {
			Type:     "object",
			Required: []string{"company", "project", "deadline"},
			Properties: map[string]*openapi.Schema{
				"company":          {Type: "string"},
				"project":          {Type: "string"},
				"project_type":     {Type: "string", Default: "other"},
				"contact_email":    {Type: "string", Format: "email"},
				"deadline":         {Type: "string", Format: "date"},
				"decision":         decisionSchema(),
				"assigned_officer": {Type: "string"},
				"consultation_fee": {Type: "integer", Description: "Fee in cents"},
				"payment_status":   openapi.Enum("Payment status", string(PaymentPending), string(PaymentPaid)),
			},
		},
		"ConsultationSearch": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"page":             {Type: "integer"},
				"page_size":        {Type: "integer"},
				"search":           {Type: "string"},
				"sort":             {Type: "string"},
				"decision":         decisionSchema(),
				"email_sent":       {Type: "boolean"},
				"company":          {Type: "string"},
				"assigned_officer": {Type: "string"},
				"project_type":     {Type: "string"},
				"payment_status":   {Type: "string"},
				"deadline_from":    {Type: "string", Format: "date"},
				"deadline_to":      {Type: "string", Format: "date"},
			},
		},
		"DecisionCommand": {
			Type:       "object",
			Required:   []string{"decision"},
			Properties: map[string]*openapi.Schema{"decision": decisionSchema()},
		},
		"DecisionOption": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"value": decisionSchema(),
				"label": {Type: "string"},
			},
		},
	}
}

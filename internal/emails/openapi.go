package emails

import "github.com/JaimeStill/consult/pkg/openapi"

type spec struct {
	Send   *openapi.Operation
	Batch  *openapi.Operation
	Drafts *openapi.Operation
}

// Spec documents the email endpoints.
var Spec = spec{
	Send: &openapi.Operation{
		Summary:     "Send the decision email",
		Description: "Conditional endorsements store a draft reply instead of sending. A failed dispatch returns 502 and leaves the consultation unchanged.",
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Consultation id")},
		RequestBody: &openapi.RequestBody{
			Content: map[string]*openapi.MediaType{
				"application/json": {Schema: openapi.SchemaRef("SendRequest")},
			},
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Dispatch succeeded", "SendResponse"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
			422: openapi.ResponseRef("Unprocessable"),
			502: openapi.ResponseJSON("Dispatch failed", "SendResponse"),
		},
	},
	Batch: &openapi.Operation{
		Summary:     "Send decision emails in bulk",
		RequestBody: openapi.RequestBodyJSON("BatchRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseArrayJSON("Per-consultation outcomes in request order", "BatchItem"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Drafts: &openapi.Operation{
		Summary:    "List stored drafts",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Consultation id")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseArrayJSON("Draft blobs", "Blob"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
}

func responseProperties() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"success":   {Type: "boolean"},
		"error":     {Type: "string"},
		"email_id":  {Type: "string"},
		"draft":     {Type: "boolean"},
		"draft_key": {Type: "string"},
	}
}

// Schemas returns the component schemas of the email domain.
func Schemas() map[string]*openapi.Schema {
	send := responseProperties()
	send["consultation"] = openapi.SchemaRef("ConsultationRow")

	item := responseProperties()
	item["id"] = &openapi.Schema{Type: "string", Format: "uuid"}

	return map[string]*openapi.Schema{
		"SendRequest": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"conditions": {Type: "array", Items: &openapi.Schema{Type: "string"}, Description: "Conditions listed in a conditional endorsement draft"},
			},
		},
		"SendResponse": {Type: "object", Properties: send},
		"BatchRequest": {
			Type:     "object",
			Required: []string{"ids"},
			Properties: map[string]*openapi.Schema{
				"ids": {Type: "array", Items: &openapi.Schema{Type: "string", Format: "uuid"}},
			},
		},
		"BatchItem": {Type: "object", Properties: item},
		"Blob": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"key":           {Type: "string"},
				"content_type":  {Type: "string"},
				"size":          {Type: "integer"},
				"last_modified": {Type: "string", Format: "date-time"},
			},
		},
	}
}

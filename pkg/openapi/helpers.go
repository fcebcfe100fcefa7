package openapi

const (
	schemaPrefix   = "#/components/schemas/"
	responsePrefix = "#/components/responses/"
	jsonMedia      = "application/json"
)

// SchemaRef points at a component schema.
func SchemaRef(name string) *Schema {
	return &Schema{Ref: schemaPrefix + name}
}

// ResponseRef points at a component response.
func ResponseRef(name string) *Response {
	return &Response{Ref: responsePrefix + name}
}

func jsonContent(s *Schema) map[string]*MediaType {
	return map[string]*MediaType{jsonMedia: {Schema: s}}
}

// RequestBodyJSON is a JSON body of the named component schema.
func RequestBodyJSON(schemaName string, required bool) *RequestBody {
	return &RequestBody{Required: required, Content: jsonContent(SchemaRef(schemaName))}
}

// ResponseJSON is a JSON response of the named component schema.
func ResponseJSON(description, schemaName string) *Response {
	return &Response{Description: description, Content: jsonContent(SchemaRef(schemaName))}
}

// ResponseArrayJSON is a JSON response holding an array of the named component schema.
func ResponseArrayJSON(description, schemaName string) *Response {
	return &Response{
		Description: description,
		Content:     jsonContent(&Schema{Type: "array", Items: SchemaRef(schemaName)}),
	}
}

// PathParam is a required UUID path segment, such as a consultation id.
func PathParam(name, description string) *Parameter {
	return param(name, "path", description, true, &Schema{Type: "string", Format: "uuid"})
}

// KeyParam is a required free-form path segment, such as a blob key.
func KeyParam(name, description string) *Parameter {
	return param(name, "path", description, true, &Schema{Type: "string"})
}

// QueryParam is a query string parameter of the given JSON type.
func QueryParam(name, typ, description string, required bool) *Parameter {
	return param(name, "query", description, required, &Schema{Type: typ})
}

func param(name, in, description string, required bool, s *Schema) *Parameter {
	return &Parameter{Name: name, In: in, Required: required, Description: description, Schema: s}
}

// Enum is a string schema limited to values.
func Enum(description string, values ...string) *Schema {
	s := &Schema{Type: "string", Description: description, Enum: make([]any, 0, len(values))}
	for _, v := range values {
		s.Enum = append(s.Enum, v)
	}
	return s
}

package response

// FieldError is one entry of the error body. Path and Location are filled for
// request-validation failures and left empty for business-rule errors.
type FieldError struct {
	Type     string `json:"type"`
	Msg      string `json:"msg"`
	Path     string `json:"path"`
	Location string `json:"location"`
}

// Body is the uniform error response shape: {"errors": [...]}.
type Body struct {
	Errors []FieldError `json:"errors"`
}

// Error builds an error body with a single entry.
func Error(errType, msg string) Body {
	return Body{Errors: []FieldError{{Type: errType, Msg: msg}}}
}

// FieldErrorBody builds an error body for a failed input field.
func FieldErrorBody(errType, msg, path, location string) Body {
	return Body{Errors: []FieldError{{Type: errType, Msg: msg, Path: path, Location: location}}}
}

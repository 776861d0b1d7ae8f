// Package apierror holds the JSON envelopes of every 4xx/5xx response, so
// no handler leaks internal details (stack traces, SQL errors) to clients.
package apierror

// APIError is the envelope for malformed requests and infrastructure
// failures.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError lists the fields that failed their validate tags.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// DomainError carries a business rule violation (not found, duplicate,
// ambiguous name, inactive record, insufficient stock).
type DomainError struct {
	Error string `json:"error"`
}

func NewDomain(msg string) *DomainError {
	return &DomainError{Error: msg}
}

package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// AllFields is the error key for violations that concern the whole form
// rather than one field.
const AllFields = "__all__"

// FormError is the outcome of a failed validation pass: every implicated
// field mapped to its ordered messages, plus the kind of the check that
// raised it. A FormError is a policy violation, never a systems fault.
type FormError struct {
	Kind     ErrorKind            `json:"kind"`
	Messages map[string][]string  `json:"errors"`
	Kinds    map[string]ErrorKind `json:"kinds"`
}

// NewFormError builds a FormError attaching each message to its field. All
// fields share the same kind.
func NewFormError(kind ErrorKind, messages map[string]string) *FormError {
	e := &FormError{
		Kind:     kind,
		Messages: make(map[string][]string, len(messages)),
		Kinds:    make(map[string]ErrorKind, len(messages)),
	}
	for field, msg := range messages {
		e.Add(field, msg, kind)
	}
	return e
}

// NewFieldsError attaches one message to several fields atomically.
func NewFieldsError(kind ErrorKind, message string, fields ...string) *FormError {
	messages := make(map[string]string, len(fields))
	for _, field := range fields {
		messages[field] = message
	}
	return NewFormError(kind, messages)
}

// Add appends a message for field.
func (e *FormError) Add(field, message string, kind ErrorKind) {
	if e.Messages == nil {
		e.Messages = make(map[string][]string)
	}
	if e.Kinds == nil {
		e.Kinds = make(map[string]ErrorKind)
	}
	e.Messages[field] = append(e.Messages[field], message)
	e.Kinds[field] = kind
}

// Error implements the error interface. Fields are listed in sorted order so
// the string is stable across runs.
func (e *FormError) Error() string {
	fields := e.Fields()
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e.Messages[field], " ")))
	}
	return fmt.Sprintf("%s: %s", e.Kind, strings.Join(parts, "; "))
}

// Fields returns the implicated field names in sorted order.
func (e *FormError) Fields() []string {
	fields := make([]string, 0, len(e.Messages))
	for field := range e.Messages {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Has reports whether field is implicated.
func (e *FormError) Has(field string) bool {
	_, ok := e.Messages[field]
	return ok
}

// Message returns the messages for field joined by a space.
func (e *FormError) Message(field string) string {
	return strings.Join(e.Messages[field], " ")
}

// ServiceError represents a standardized error response for failures that
// are not validation outcomes.
type ServiceError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrInvalidInput       = "INVALID_INPUT"
	ErrUnknownFormCode    = "UNKNOWN_FORM"
	ErrDatabaseError      = "DATABASE_ERROR"
	ErrContextUnavailable = "CONTEXT_UNAVAILABLE"
	ErrRateLimit          = "RATE_LIMIT_EXCEEDED"
	ErrInternalServer     = "INTERNAL_SERVER_ERROR"
)

// NewServiceError creates a new ServiceError with timestamp
func NewServiceError(code, message, details, requestID string) *ServiceError {
	return &ServiceError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

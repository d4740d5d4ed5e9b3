package models

// MessageResponse is the body of every non-validation error and of plain confirmations.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// FieldError describes one failed field check.
type FieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

type ValidationErrorResponse struct {
	Errors []FieldError `json:"errors"`
}

func NewMessageResponse(message string) MessageResponse {
	return MessageResponse{Msg: message}
}

// NewErrorResponse creates an error response
func NewErrorResponse(message string) MessageResponse {
	return MessageResponse{Msg: message}
}

// NewValidationErrorResponse creates a validation error response
func NewValidationErrorResponse(errors []FieldError) ValidationErrorResponse {
	return ValidationErrorResponse{Errors: errors}
}

package handler

// ErrorResponse is the uniform error envelope for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

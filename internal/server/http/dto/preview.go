package dto

// LinkResponse carries a direct download URL.
type LinkResponse struct {
	URL string `json:"url"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports service readiness.
type HealthResponse struct {
	Status string `json:"status"`
}

package api

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// UpdateResponse reports a successful partial update.
type UpdateResponse struct {
	Message string `json:"message"`
	Changes int64  `json:"changes"`
}

// DeleteResponse reports a successful delete.
type DeleteResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

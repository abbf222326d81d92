package domain

// Ack is the body the server returns for mutations, e.g. {"message": "Task created"}.
type Ack struct {
	Message string `json:"message"`
}

// Health is the body of GET /.
type Health struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Healthy reports whether the server declared itself healthy.
func (h Health) Healthy() bool { return h.Status == "healthy" }

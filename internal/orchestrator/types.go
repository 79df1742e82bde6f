// Package orchestrator implements the HTTP relay client for the
// BCN Art Compass /chat endpoint.
package orchestrator

// ChatRequest is the wire payload sent to the orchestrator.
type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// ChatResponse is the parsed orchestrator reply. The reply text lives in
// a configurable JSON field, so the raw body is decoded generically and
// the field looked up by name.
type ChatResponse struct {
	Reply         string
	CorrelationID string
}

package models

// OutboundMessageRequest represents requests to send a free-form message via the API.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}

// Dispatch is a rendered message ready to be opened or sent.
type Dispatch struct {
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	URL       string `json:"url"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	// Sent is true when the configured provider delivered the message itself
	// instead of leaving it to the operator.
	Sent      bool   `json:"sent"`
	MessageID string `json:"message_id,omitempty"`
}

package chat

import "github.com/fabfab/study-agent/models"

type CreateRequest struct {
	UserID      string
	Title       string
	DocumentIDs []string
}

// Reply is the outcome of sending a message.
type Reply struct {
	Message models.Message
	// Context is the retrieval context the reply was built from.
	Context string
}

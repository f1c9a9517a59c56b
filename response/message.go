// Package response contains the JSON bodies written by the reference backend besides tasks themselves.
package response

// A struct type that represents a message with a status and body.
// Message has the following properties:
// - Status: The status of the message.
// - Body: The body of the message.
type Message struct {
	Status string `json:"status"`
	Body   string `json:"body"`
}

// Response carries a human readable outcome, e.g. after a delete.
type Response struct {
	Message string `json:"message"`
}

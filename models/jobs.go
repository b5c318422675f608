package models

// Job payloads carried through the durable queue. Each maps to one task
// type handled by the queue worker.

type EmailJobPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type NotificationJobPayload struct {
	UserID   string               `json:"userId"`
	Title    string               `json:"title"`
	Message  string               `json:"message"`
	Category NotificationCategory `json:"category"`
	Link     string               `json:"link,omitempty"`
	Hints    ChannelHints         `json:"hints"`
}

type PostPublishJobPayload struct {
	PostID string `json:"postId"`
	UserID string `json:"userId"`
	Title  string `json:"title"`
}

type ReportJobPayload struct {
	ReportID string `json:"reportId"`
	UserID   string `json:"userId"`
	Kind     string `json:"kind"`
}

package whatsapp

// SendRequest is the WhatsApp Cloud API text message payload.
type SendRequest struct {
	MessagingProduct string      `json:"messaging_product"`
	RecipientType    string      `json:"recipient_type,omitempty"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             SendText    `json:"text"`
	Context          *MsgContext `json:"context,omitempty"`
}

// SendText is the body of an outbound text message.
type SendText struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

// MsgContext references the inbound message an outbound one replies to.
type MsgContext struct {
	MessageID string `json:"message_id"`
}

// SendResponse is the Cloud API response for a send request.
type SendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *APIError `json:"error,omitempty"`
}

// APIError is the Graph API error envelope.
type APIError struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// WebhookEvent is the Cloud API webhook envelope for inbound messages.
type WebhookEvent struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Field string       `json:"field"`
			Value WebhookValue `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// WebhookValue carries the messages of one webhook change.
type WebhookValue struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		WaID    string `json:"wa_id"`
		Profile struct {
			Name string `json:"name"`
		} `json:"profile"`
	} `json:"contacts"`
	Messages []struct {
		From      string `json:"from"`
		ID        string `json:"id"`
		Timestamp string `json:"timestamp"`
		Type      string `json:"type"`
		Text      *struct {
			Body string `json:"body"`
		} `json:"text,omitempty"`
		GroupID string `json:"group_id,omitempty"`
	} `json:"messages"`
}

// ParsedInboundMessage is one normalized inbound text message.
type ParsedInboundMessage struct {
	SenderID  string
	MessageID string
	Body      string
	IsGroup   bool
}

package response

// Message is the body of every error and of plain confirmations.
type Message struct {
	Message string `json:"message"`
}

// List is the body of paginated list endpoints. Total counts the documents
// in scope, not just this page.
type List struct {
	Total int64 `json:"total"`
	Data  any   `json:"data"`
}

// Created confirms an insert.
type Created struct {
	Message    string `json:"message"`
	InsertedID any    `json:"insertedId,omitempty"`
}

func Msg(m string) Message { return Message{Message: m} }

// Error uses the default message for code unless customMsg is set.
func Error(code int, customMsg string) Message {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return Message{Message: msg}
}

func NewList[T any](total int64, data []T) List {
	if data == nil {
		data = []T{}
	}
	return List{Total: total, Data: data}
}

// Package transport defines the outbound chat message contract and the
// senders that hand messages to the chat gateway.
package transport

import (
	"context"
	"errors"
)

// Actions understood by the gateway.
const (
	ActionSend  = "send"
	ActionEdit  = "edit"
	ActionLeave = "leave"
)

// ParseMarkdown is the only parse mode the bot renders.
const ParseMarkdown = "Markdown"

// Button is an inline button. Exactly one of URL or Data is set.
type Button struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
	Data string `json:"data,omitempty"`
}

// Message is one outbound instruction for the gateway.
type Message struct {
	Action        string     `json:"action"`
	ChatID        int64      `json:"chat_id"`
	ReplyTo       int64      `json:"reply_to,omitempty"`
	EditMessageID int64      `json:"edit_message_id,omitempty"`
	Text          string     `json:"text,omitempty"`
	ParseMode     string     `json:"parse_mode,omitempty"`
	Buttons       [][]Button `json:"buttons,omitempty"`
}

// Sender delivers messages to the chat gateway.
type Sender interface {
	Send(ctx context.Context, m Message) error
	Close() error
}

// Send builds a Markdown message to chatID.
func Send(chatID int64, text string, buttons ...[]Button) Message {
	return Message{Action: ActionSend, ChatID: chatID, Text: text, ParseMode: ParseMarkdown, Buttons: buttons}
}

// Reply is Send threaded under messageID.
func Reply(chatID, messageID int64, text string, buttons ...[]Button) Message {
	m := Send(chatID, text, buttons...)
	m.ReplyTo = messageID
	return m
}

// Edit replaces the text and buttons of an earlier message.
func Edit(chatID, messageID int64, text string, buttons ...[]Button) Message {
	m := Send(chatID, text, buttons...)
	m.Action = ActionEdit
	m.EditMessageID = messageID
	return m
}

// Leave asks the gateway to remove the bot from chatID.
func Leave(chatID int64) Message {
	return Message{Action: ActionLeave, ChatID: chatID}
}

// Validation errors.
var (
	ErrNoChat    = errors.New("transport: chat id is required")
	ErrNoText    = errors.New("transport: text is required")
	ErrNoEditRef = errors.New("transport: edit needs a message id")
	ErrBadAction = errors.New("transport: unknown action")
	ErrBadButton = errors.New("transport: button needs text and one of url or data")
)

// Validate checks the message against the gateway contract.
func (m Message) Validate() error {
	if m.ChatID == 0 {
		return ErrNoChat
	}
	switch m.Action {
	case ActionLeave:
		return nil
	case ActionEdit:
		if m.EditMessageID == 0 {
			return ErrNoEditRef
		}
	case ActionSend:
	default:
		return ErrBadAction
	}
	if m.Text == "" {
		return ErrNoText
	}
	for _, row := range m.Buttons {
		for _, b := range row {
			if b.Text == "" || (b.URL == "") == (b.Data == "") {
				return ErrBadButton
			}
		}
	}
	return nil
}

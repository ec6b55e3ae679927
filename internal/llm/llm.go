// Package llm defines the model-service boundary: a request carries an
// ordered message list, the tool schemas on offer, and a tool-choice mode;
// a response carries the model's message with any tool invocations. The
// orchestrator depends only on the Completer interface so tests substitute
// a scripted fake for the real provider.
package llm

import (
	"context"
	"encoding/json"
)

// Message roles. Tool results travel as RoleTool messages; the provider
// adapter maps them onto whatever wire shape the vendor requires.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is the model asking for one function invocation.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// Message is one conversation entry. Assistant messages may carry tool
// calls; tool messages answer a specific call by ID.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	IsError    bool
}

// UserMessage builds a plain user turn.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// ToolResult builds the observation answering the tool call callID.
func ToolResult(callID, content string, isError bool) Message {
	return Message{Role: RoleTool, ToolCallID: callID, Content: content, IsError: isError}
}

// Tool describes one callable function offered to the model.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// ToolChoiceMode selects how the model may use the offered tools.
type ToolChoiceMode string

const (
	// ToolChoiceAuto lets the model decide whether to call a tool.
	ToolChoiceAuto ToolChoiceMode = "auto"
	// ToolChoiceNone withholds tools entirely, forcing free text.
	ToolChoiceNone ToolChoiceMode = "none"
	// ToolChoiceTool forces a call to one named tool.
	ToolChoiceTool ToolChoiceMode = "tool"
)

// ToolChoice pairs a mode with the tool name it forces, if any.
type ToolChoice struct {
	Mode ToolChoiceMode
	Name string
}

// ChooseAuto lets the model pick freely among the offered tools.
func ChooseAuto() ToolChoice { return ToolChoice{Mode: ToolChoiceAuto} }

// ChooseNone offers no tools; the model must answer in text.
func ChooseNone() ToolChoice { return ToolChoice{Mode: ToolChoiceNone} }

// ChooseTool requires the model to call the named tool.
func ChooseTool(name string) ToolChoice {
	return ToolChoice{Mode: ToolChoiceTool, Name: name}
}

// Request is one blocking model invocation.
type Request struct {
	System     string
	Messages   []Message
	Tools      []Tool
	ToolChoice ToolChoice
	MaxTokens  int
}

// Response is the model's reply.
type Response struct {
	Message    Message
	StopReason string
}

// Completer is the black-box completion service.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

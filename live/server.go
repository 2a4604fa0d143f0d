package live

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// SetupComplete acknowledges the Setup message. It carries no fields;
// presence on the ServerEvent is the signal.
type SetupComplete struct{}

// InlineData is a media payload produced by the model, base64-encoded.
type InlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

func (d *InlineData) UnmarshalJSON(data []byte) error {
	var raw struct {
		MIMEType *string `json:"mimeType"`
		Data     *string `json:"data"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.MIMEType == nil {
		return fmt.Errorf("inlineData: missing mimeType")
	}
	if raw.Data == nil {
		return fmt.Errorf("inlineData: missing data")
	}
	d.MIMEType = *raw.MIMEType
	d.Data = *raw.Data
	return nil
}

// Part is one piece of a model turn. Both fields may theoretically be present
// at once; callers handle either, both, or neither.
type Part struct {
	InlineData *InlineData `json:"inlineData,omitempty"`
	Text       *string     `json:"text,omitempty"`
}

// ModelTurn is the model's contribution to the conversation so far.
type ModelTurn struct {
	Parts []Part `json:"parts"`
}

func (m *ModelTurn) UnmarshalJSON(data []byte) error {
	var raw struct {
		Parts *[]Part `json:"parts"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Parts == nil {
		return fmt.Errorf("modelTurn: missing parts")
	}
	m.Parts = *raw.Parts
	return nil
}

// Transcription is a speech-to-text fragment for one audio direction.
type Transcription struct {
	Text string `json:"text"`
}

func (t *Transcription) UnmarshalJSON(data []byte) error {
	var raw struct {
		Text *string `json:"text"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Text == nil {
		return fmt.Errorf("transcription: missing text")
	}
	t.Text = *raw.Text
	return nil
}

// ServerContent is the content portion of a server event. Absent fields mean
// "nothing signaled this event": an absent Interrupted is not false, it is no
// interruption signal at all.
type ServerContent struct {
	ModelTurn           *ModelTurn         `json:"modelTurn,omitempty"`
	Interrupted         *bool              `json:"interrupted,omitempty"`
	TurnComplete        *bool              `json:"turnComplete,omitempty"`
	InputTranscription  *Transcription     `json:"inputTranscription,omitempty"`
	OutputTranscription *Transcription     `json:"outputTranscription,omitempty"`
	GroundingMetadata   *GroundingMetadata `json:"groundingMetadata,omitempty"`
}

// FunctionCall asks the client to invoke a tool. Args passes through opaquely.
type FunctionCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

func (f *FunctionCall) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID   *string         `json:"id"`
		Name *string         `json:"name"`
		Args *map[string]any `json:"args"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID == nil {
		return fmt.Errorf("functionCall: missing id")
	}
	if raw.Name == nil {
		return fmt.Errorf("functionCall: missing name")
	}
	if raw.Args == nil {
		return fmt.Errorf("functionCall: missing args")
	}
	f.ID = *raw.ID
	f.Name = *raw.Name
	f.Args = *raw.Args
	return nil
}

// ToolCall carries one or more function calls from the model.
type ToolCall struct {
	FunctionCalls []FunctionCall `json:"functionCalls"`
}

func (tc *ToolCall) UnmarshalJSON(data []byte) error {
	var raw struct {
		FunctionCalls *[]FunctionCall `json:"functionCalls"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.FunctionCalls == nil {
		return fmt.Errorf("toolCall: missing functionCalls")
	}
	tc.FunctionCalls = *raw.FunctionCalls
	return nil
}

// ModalityTokenCount is the token count attributed to one modality.
type ModalityTokenCount struct {
	Modality   Modality `json:"modality"`
	TokenCount int      `json:"tokenCount"`
}

func (m *ModalityTokenCount) UnmarshalJSON(data []byte) error {
	var raw struct {
		Modality   *Modality `json:"modality"`
		TokenCount *int      `json:"tokenCount"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Modality == nil {
		return fmt.Errorf("modalityTokenCount: missing modality")
	}
	if raw.TokenCount == nil {
		return fmt.Errorf("modalityTokenCount: missing tokenCount")
	}
	m.Modality = *raw.Modality
	m.TokenCount = *raw.TokenCount
	return nil
}

// UsageMetadata is the token accounting for the response. Every field is
// optional; nil means the service did not report that counter.
type UsageMetadata struct {
	PromptTokenCount           *int                 `json:"promptTokenCount,omitempty"`
	CachedContentTokenCount    *int                 `json:"cachedContentTokenCount,omitempty"`
	ResponseTokenCount         *int                 `json:"responseTokenCount,omitempty"`
	ToolUsePromptTokenCount    *int                 `json:"toolUsePromptTokenCount,omitempty"`
	ThoughtsTokenCount         *int                 `json:"thoughtsTokenCount,omitempty"`
	TotalTokenCount            *int                 `json:"totalTokenCount,omitempty"`
	PromptTokensDetails        []ModalityTokenCount `json:"promptTokensDetails,omitempty"`
	CacheTokensDetails         []ModalityTokenCount `json:"cacheTokensDetails,omitempty"`
	ResponseTokensDetails      []ModalityTokenCount `json:"responseTokensDetails,omitempty"`
	ToolUsePromptTokensDetails []ModalityTokenCount `json:"toolUsePromptTokensDetails,omitempty"`
}

// ServerEvent is the top-level envelope for everything the service sends.
// It is a union by presence, not a strict single-variant union: the protocol
// may combine several signals in one envelope, so zero or more fields can be
// set simultaneously.
type ServerEvent struct {
	SetupComplete *SetupComplete `json:"setupComplete,omitempty"`
	ServerContent *ServerContent `json:"serverContent,omitempty"`
	ToolCall      *ToolCall      `json:"toolCall,omitempty"`
	UsageMetadata *UsageMetadata `json:"usageMetadata,omitempty"`
}

// Parser decodes server events, reporting failures through its recorder.
type Parser struct {
	record ErrorRecorder
}

// NewParser builds a parser with the given recorder. A nil recorder falls
// back to the standard logger.
func NewParser(rec ErrorRecorder) *Parser {
	if rec == nil {
		rec = defaultRecorder
	}
	return &Parser{record: rec}
}

// Parse decodes one wire frame into a ServerEvent. It is total: any input,
// however malformed, yields either an event or nil, never a panic or an error
// in the caller's control flow. Syntax and schema failures are reported
// through the recorder with the raw text capped at 200 bytes; unknown fields
// are ignored for forward compatibility.
func (p *Parser) Parse(raw string) *ServerEvent {
	var evt *ServerEvent
	if err := sonic.Unmarshal([]byte(raw), &evt); err != nil {
		p.fail(raw, err)
		return nil
	}
	if evt == nil {
		p.fail(raw, fmt.Errorf("event is not a JSON object"))
		return nil
	}
	return evt
}

func (p *Parser) fail(raw string, err error) {
	p.record(fmt.Sprintf("error parsing server event: %v", err))
	p.record("raw message (truncated): " + truncate(raw, maxLoggedRaw))
}

var defaultParser = NewParser(nil)

// ParseServerEvent decodes one wire frame using the default log-backed
// recorder. See Parser.Parse.
func ParseServerEvent(raw string) *ServerEvent {
	return defaultParser.Parse(raw)
}

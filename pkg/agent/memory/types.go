package memory

import (
	"fmt"
	"time"

	"github.com/entrhq/forge/pkg/types"
)

// Importance is an ordinal retention priority. Higher values are kept
// longer under token pressure.
type Importance int

const (
	Temp Importance = iota
	Low
	Medium
	High
	Critical
)

func (i Importance) String() string {
	switch i {
	case Temp:
		return "Temp"
	case Low:
		return "Low"
	case Medium:
		return "Medium"
	case High:
		return "High"
	case Critical:
		return "Critical"
	default:
		return fmt.Sprintf("Importance(%d)", int(i))
	}
}

// ParseImportance converts a string (as found in a serialized payload) back
// into an Importance, returning ErrInvalidImportance if it isn't recognized.
func ParseImportance(s string) (Importance, error) {
	switch s {
	case "Temp":
		return Temp, nil
	case "Low":
		return Low, nil
	case "Medium":
		return Medium, nil
	case "High":
		return High, nil
	case "Critical":
		return Critical, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidImportance, s)
	}
}

// maxImportance returns the greater of two importances.
func maxImportance(a, b Importance) Importance {
	if a > b {
		return a
	}
	return b
}

// MessageType classifies a message for the importance engine. It is derived
// from the message's role and content shape at metadata-creation time, and
// from the host's explicit FinalAnswer/QuestionToUser markers.
type MessageType int

const (
	TypeSystem MessageType = iota
	TypeUserQuery
	TypeAssistantResponse
	TypeToolCall
	TypeToolResponse
	TypeToolError
	TypeFinalAnswer
	TypeQuestionToUser
)

func (t MessageType) String() string {
	switch t {
	case TypeSystem:
		return "System"
	case TypeUserQuery:
		return "UserQuery"
	case TypeAssistantResponse:
		return "AssistantResponse"
	case TypeToolCall:
		return "ToolCall"
	case TypeToolResponse:
		return "ToolResponse"
	case TypeToolError:
		return "ToolError"
	case TypeFinalAnswer:
		return "FinalAnswer"
	case TypeQuestionToUser:
		return "QuestionToUser"
	default:
		return fmt.Sprintf("MessageType(%d)", int(t))
	}
}

// reservedControlFlowTools names the tool calls R3 treats as control-flow
// terminators: an assistant issuing one of these is answering the user or
// asking a clarifying question, not doing ordinary tool work. Keyed on this
// repo's actual built-in tool names (pkg/agent/tools), not the reference
// source's "final_answer"/"ask_question" — the source's own FINAL_ANSWER and
// QUESTION_TO_USER message types are preserved, only the triggering
// function names are adapted to the host's tool registry.
var reservedControlFlowTools = map[string]MessageType{
	"task_completion": TypeFinalAnswer,
	"ask_question":    TypeQuestionToUser,
	"converse":        TypeQuestionToUser,
}

// MessageMetadata is the mutable side-record kept 1:1 (by positional index)
// with each message in a ConversationMemory. It is never reordered relative
// to its message, even though its fields are mutated freely over the
// message's lifetime.
type MessageMetadata struct {
	MessageType MessageType
	Importance  Importance
	CreatedAt   time.Time
	TokenCount  int

	IsError        bool
	ErrorResolved  bool
	ResolvedByIdx  int // -1 if not resolved
	PartOfTask     string
	TaskCompleted  bool

	CanSummarize bool
	Summary      string

	ToolCallID   string
	FunctionName string

	RelatedMessages []int
}

func newMessageMetadata(msgType MessageType, createdAt time.Time, tokenCount int) *MessageMetadata {
	return &MessageMetadata{
		MessageType:   msgType,
		Importance:    Low,
		CreatedAt:     createdAt,
		TokenCount:    tokenCount,
		ResolvedByIdx: -1,
		CanSummarize:  msgType != TypeSystem && msgType != TypeFinalAnswer && msgType != TypeQuestionToUser,
	}
}

// Pair is a positional range covering one logical "turn" in the
// conversation: a single message (start == end) or a call/response pair
// (start < end). Used by the importance engine's position-based rules
// (R6/R7) and by the optimizer's pair-grouped removal.
type Pair struct {
	Start int
	End   int
}

// ToolPair records the call/response indices for one tool_call_id.
type ToolPair struct {
	ToolCallID   string
	CallIndex    int
	ResponseIndex int // -1 if unresolved (call with no response yet)
}

// ToolImportanceOverride maps a tool's function name to a pinned importance
// that applies to both sides of every pair naming that function.
type ToolImportanceOverride map[string]Importance

// OptimizationAction is the coarse outcome of an optimizer run.
type OptimizationAction string

const (
	ActionNone      OptimizationAction = "none"
	ActionOptimized OptimizationAction = "optimized"
)

// OptimizationInfo reports what the optimizer did (or why it did nothing).
type OptimizationInfo struct {
	Action                      OptimizationAction
	Reason                      string
	OriginalTokens              int
	FinalTokens                 int
	TokensSaved                 int
	MessagesRemoved             int
	MessagesSummarized          int
	MemoryPressureBefore        float64
	MemoryPressureAfter         float64
	ToolPairsPreserved          int
	ImportantMessagesPreserved int
}

// MemoryStats counts cumulative optimizer activity across the lifetime of a
// ConversationMemory.
type MemoryStats struct {
	MessagesRemoved     int
	MessagesSummarized  int
	TokensSaved         int
	MemoryOptimizations int
}

// ExportedMessage pairs a message with a read-only snapshot of its metadata,
// as returned by Export/ExportPairs.
type ExportedMessage struct {
	Index    int
	Message  *types.Message
	Metadata MessageMetadata
}

// PairInfo describes one tool-call pair as returned by ExportToolPairs.
type PairInfo struct {
	ToolCallID    string
	FunctionName  string
	CallIndex     int
	ResponseIndex int
	IsError       bool
	ErrorResolved bool
	Importance    Importance
}

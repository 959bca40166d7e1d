package memory

import (
	"fmt"
	"sort"
	"time"

	"github.com/entrhq/forge/pkg/types"
)

// serializedMetadata mirrors MessageMetadata in a JSON-stable shape: enums
// as strings, timestamps as RFC3339, so a payload survives a round trip
// through a different build of this package.
type serializedMetadata struct {
	MessageType     string `json:"message_type"`
	Importance      string `json:"importance"`
	CreatedAt       string `json:"created_at"`
	TokenCount      int    `json:"token_count"`
	IsError         bool   `json:"is_error"`
	ErrorResolved   bool   `json:"error_resolved"`
	ResolvedByIdx   int    `json:"resolved_by_idx"`
	PartOfTask      string `json:"part_of_task"`
	TaskCompleted   bool   `json:"task_completed"`
	CanSummarize    bool   `json:"can_summarize"`
	Summary         string `json:"summary"`
	ToolCallID      string `json:"tool_call_id"`
	FunctionName    string `json:"function_name"`
	RelatedMessages []int  `json:"related_messages"`
}

// SerializablePayload is the wire format for ConversationMemory's derived
// state (everything except the messages themselves, which the host already
// owns and persists separately).
type SerializablePayload struct {
	MaxTokens           int               `json:"max_tokens"`
	TargetTokens        int               `json:"target_tokens"`
	EnableSummarization bool              `json:"enable_summarization"`
	ActiveTasks         []string          `json:"active_tasks"`
	CompletedTasks      []string          `json:"completed_tasks"`
	ConversationSummary string            `json:"conversation_summary"`
	TaskSummaries       map[string]string `json:"task_summaries"`
	Stats               MemoryStats       `json:"stats"`
	MessageMetadata     []serializedMetadata `json:"message_metadata"`
}

// ToSerializable snapshots every field to_dict/from_dict round-trips,
// leaving the message list itself to the host.
func (c *ConversationMemory) ToSerializable() *SerializablePayload {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := &SerializablePayload{
		MaxTokens:           c.maxTokens,
		TargetTokens:        c.targetTokens,
		EnableSummarization: c.enableSummarization,
		ActiveTasks:         sortedKeys(c.activeTasks),
		CompletedTasks:      sortedKeys(c.completedTasks),
		ConversationSummary: c.conversationSummary,
		TaskSummaries:       copyStringMap(c.taskSummaries),
		Stats:               c.stats,
		MessageMetadata:     make([]serializedMetadata, len(c.metas)),
	}
	for i, m := range c.metas {
		p.MessageMetadata[i] = serializedMetadata{
			MessageType:     m.MessageType.String(),
			Importance:      m.Importance.String(),
			CreatedAt:       m.CreatedAt.Format(time.RFC3339Nano),
			TokenCount:      m.TokenCount,
			IsError:         m.IsError,
			ErrorResolved:   m.ErrorResolved,
			ResolvedByIdx:   m.ResolvedByIdx,
			PartOfTask:      m.PartOfTask,
			TaskCompleted:   m.TaskCompleted,
			CanSummarize:    m.CanSummarize,
			Summary:         m.Summary,
			ToolCallID:      m.ToolCallID,
			FunctionName:    m.FunctionName,
			RelatedMessages: m.RelatedMessages,
		}
	}
	return p
}

// FromSerializable rebuilds a ConversationMemory from a payload and the
// message list it describes. The two must agree in length (I1); a mismatch
// is a caller error, not something this repairs silently.
func FromSerializable(p *SerializablePayload, messages []*types.Message, opts ...Option) (*ConversationMemory, error) {
	if len(p.MessageMetadata) != len(messages) {
		return nil, fmt.Errorf("memory: metadata count (%d) does not match message count (%d)", len(p.MessageMetadata), len(messages))
	}

	c := NewConversationMemory(opts...)
	c.maxTokens = p.MaxTokens
	c.targetTokens = p.TargetTokens
	c.enableSummarization = p.EnableSummarization
	c.conversationSummary = p.ConversationSummary
	c.taskSummaries = copyStringMap(p.TaskSummaries)
	c.stats = p.Stats
	c.activeTasks = toSet(p.ActiveTasks)
	c.completedTasks = toSet(p.CompletedTasks)

	metas := make([]*MessageMetadata, len(messages))
	for i, sm := range p.MessageMetadata {
		msgType, err := parseMessageType(sm.MessageType)
		if err != nil {
			return nil, err
		}
		imp, err := ParseImportance(sm.Importance)
		if err != nil {
			return nil, err
		}
		createdAt, err := time.Parse(time.RFC3339Nano, sm.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("memory: invalid created_at at index %d: %w", i, err)
		}
		metas[i] = &MessageMetadata{
			MessageType:     msgType,
			Importance:      imp,
			CreatedAt:       createdAt,
			TokenCount:      sm.TokenCount,
			IsError:         sm.IsError,
			ErrorResolved:   sm.ErrorResolved,
			ResolvedByIdx:   sm.ResolvedByIdx,
			PartOfTask:      sm.PartOfTask,
			TaskCompleted:   sm.TaskCompleted,
			CanSummarize:    sm.CanSummarize,
			Summary:         sm.Summary,
			ToolCallID:      sm.ToolCallID,
			FunctionName:    sm.FunctionName,
			RelatedMessages: sm.RelatedMessages,
		}
	}

	c.messages = messages
	c.metas = metas
	c.pairIndex = newPairIndex()
	for i, msg := range messages {
		if msg.Role == types.RoleAssistant && msg.HasToolCalls() {
			for _, tc := range msg.ToolCalls {
				c.pairIndex.registerCall(tc.ID, i)
			}
		}
		if msg.Role == types.RoleTool && msg.ToolCallID != "" {
			c.pairIndex.completeResponse(msg.ToolCallID, i)
		}
	}

	return c, nil
}

func parseMessageType(s string) (MessageType, error) {
	switch s {
	case "System":
		return TypeSystem, nil
	case "UserQuery":
		return TypeUserQuery, nil
	case "AssistantResponse":
		return TypeAssistantResponse, nil
	case "ToolCall":
		return TypeToolCall, nil
	case "ToolResponse":
		return TypeToolResponse, nil
	case "ToolError":
		return TypeToolError, nil
	case "FinalAnswer":
		return TypeFinalAnswer, nil
	case "QuestionToUser":
		return TypeQuestionToUser, nil
	default:
		return 0, fmt.Errorf("memory: invalid message type %q", s)
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func toSet(keys []string) map[string]bool {
	out := make(map[string]bool, len(keys))
	for _, k := range keys {
		out[k] = true
	}
	return out
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

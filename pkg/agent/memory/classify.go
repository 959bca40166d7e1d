package memory

import "github.com/entrhq/forge/pkg/types"

// classifyMessage derives a MessageType from a message's role and shape.
// FinalAnswer/QuestionToUser are not distinguishable from role alone —
// hosts mark them via WithMetadata("final_answer", true) /
// WithMetadata("ask_question", true), or by naming one of the reserved
// control-flow tools in ToolCalls (R3).
func classifyMessage(msg *types.Message) MessageType {
	switch msg.Role {
	case types.RoleSystem:
		return TypeSystem
	case types.RoleUser:
		return TypeUserQuery
	case types.RoleTool:
		return TypeToolResponse
	case types.RoleAssistant:
		if msg.HasToolCalls() {
			for _, tc := range msg.ToolCalls {
				if t, ok := reservedControlFlowTools[tc.FunctionName]; ok {
					return t
				}
			}
			return TypeToolCall
		}
		if isMarked(msg, "final_answer") {
			return TypeFinalAnswer
		}
		if isMarked(msg, "ask_question") {
			return TypeQuestionToUser
		}
		return TypeAssistantResponse
	default:
		return TypeAssistantResponse
	}
}

func isMarked(msg *types.Message, key string) bool {
	if msg.Metadata == nil {
		return false
	}
	v, ok := msg.Metadata[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// functionNameFor returns the function_name a piece of metadata should
// carry: for an assistant tool-call message with a single call, its
// function name; for a tool response, the Name field.
func functionNameFor(msg *types.Message) string {
	if msg.Role == types.RoleTool {
		return msg.Name
	}
	if msg.Role == types.RoleAssistant && len(msg.ToolCalls) == 1 {
		return msg.ToolCalls[0].FunctionName
	}
	return ""
}

package prompts

import (
	"fmt"
	"strings"

	"github.com/entrhq/forge/pkg/agent/tools"
)

// ErrorType classifies the kind of recoverable failure the agent loop hit
// while processing a single iteration.
type ErrorType string

const (
	// ErrorTypeToolExecution means a known tool was found and invoked but
	// returned an execution error.
	ErrorTypeToolExecution ErrorType = "tool_execution"

	// ErrorTypeUnknownTool means the LLM requested a tool name that is not
	// registered with the agent.
	ErrorTypeUnknownTool ErrorType = "unknown_tool"

	// ErrorTypeNoToolCall means the LLM responded without emitting a tool
	// call, violating the agent loop's one-tool-per-iteration contract.
	ErrorTypeNoToolCall ErrorType = "no_tool_call"

	// ErrorTypeParseFailure means a tool call was present but its XML could
	// not be parsed into a valid invocation.
	ErrorTypeParseFailure ErrorType = "parse_failure"
)

// ErrorRecoveryContext carries the information needed to build a recovery
// message that gets fed back to the LLM as error context for the next
// iteration.
type ErrorRecoveryContext struct {
	Type           ErrorType
	ToolName       string
	Error          error
	AvailableTools []tools.Tool
}

// BuildErrorRecoveryMessage renders a human-readable, LLM-facing message
// describing what went wrong and how to proceed. The message is injected as
// error context on the next iteration, not stored permanently in memory.
func BuildErrorRecoveryMessage(ctx ErrorRecoveryContext) string {
	switch ctx.Type {
	case ErrorTypeToolExecution:
		return fmt.Sprintf("Tool '%s' failed to execute: %v\nReview the error and try a different approach or fix the arguments before retrying.", ctx.ToolName, ctx.Error)
	case ErrorTypeUnknownTool:
		return fmt.Sprintf("Tool '%s' is not available.\n%s", ctx.ToolName, availableToolsList(ctx.AvailableTools))
	case ErrorTypeNoToolCall:
		return "Your last response did not include a tool call. You MUST respond with exactly one tool call per iteration. Review the agent loop instructions and select an appropriate tool."
	case ErrorTypeParseFailure:
		return fmt.Sprintf("Your last tool call could not be parsed: %v\nEnsure the <tool> block is well-formed XML and try again.", ctx.Error)
	default:
		return fmt.Sprintf("An unrecoverable error occurred: %v", ctx.Error)
	}
}

func availableToolsList(available []tools.Tool) string {
	if len(available) == 0 {
		return "No tools are currently available."
	}
	names := make([]string, len(available))
	for i, t := range available {
		names[i] = t.Name()
	}
	return "Available tools: " + strings.Join(names, ", ")
}

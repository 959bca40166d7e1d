package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/entrhq/forge/pkg/agent/core"
	"github.com/entrhq/forge/pkg/agent/memory"
	"github.com/entrhq/forge/pkg/agent/prompts"
	"github.com/entrhq/forge/pkg/agent/tools"
	"github.com/entrhq/forge/pkg/types"
	"github.com/google/uuid"
)

// promptContext holds the prepared prompt and related metadata
type promptContext struct {
	systemPrompt string
	messages     []*types.Message
	promptTokens int
}

// llmResponse holds the response from the LLM
type llmResponse struct {
	assistantContent string
	toolCallContent  string
	completionTokens int
}

// attemptSummarization runs the LLM-backed summarization strategy first (if
// a context manager is configured), then the memory core's own deterministic
// token-budget optimizer as a fallback — the rich pass handles conversations
// the context manager's strategy considers worth summarizing, the
// deterministic pass is the backstop that guarantees the prompt never grows
// past the memory core's own budget regardless of what the rich pass did.
// Returns true if either pass changed the stored conversation.
func (a *DefaultAgent) attemptSummarization(ctx context.Context, promptTokens int) bool {
	convMem, ok := a.memory.(*memory.ConversationMemory)
	if !ok {
		agentDebugLog.Printf("Memory is NOT ConversationMemory - type: %T", a.memory)
		return false
	}

	changed := false

	if a.contextManager != nil {
		summarizedCount, err := a.contextManager.EvaluateAndSummarize(ctx, convMem, promptTokens)
		if err != nil {
			agentDebugLog.Printf("Failed to summarize conversation: %v", err)
		} else if summarizedCount > 0 {
			agentDebugLog.Printf("Successfully summarized %d messages", summarizedCount)
			changed = true
		}
	}

	if _, info := convMem.OnBeforeLLMCall(ctx); info.Action == memory.ActionOptimized {
		agentDebugLog.Printf("Memory optimizer removed %d and summarized %d messages (%d -> %d tokens)",
			info.MessagesRemoved, info.MessagesSummarized, info.OriginalTokens, info.FinalTokens)
		changed = true
	}

	return changed
}

// preparePrompt builds the prompt, counts tokens, and handles context summarization
func (a *DefaultAgent) preparePrompt(ctx context.Context, errorContext string) *promptContext {
	// Build system prompt with tools
	systemPrompt := a.buildSystemPrompt()

	// Get conversation history from memory
	history := a.memory.GetAll()

	// Build messages for LLM with optional error context
	messages := prompts.BuildMessages(systemPrompt, history, "", errorContext)

	// Track prompt tokens before sending to LLM
	var promptTokens int
	if a.tokenizer != nil {
		promptTokens = a.tokenizer.CountMessagesTokens(messages)
		agentDebugLog.Printf("Prompt tokens before send: %d", promptTokens)
	}

	// Check if we need to summarize conversation history
	if summarized := a.attemptSummarization(ctx, promptTokens); summarized {
		// Rebuild messages after summarization
		history = a.memory.GetAll()
		messages = prompts.BuildMessages(systemPrompt, history, "", errorContext)

		// Recalculate tokens with updated messages
		if a.tokenizer != nil {
			promptTokens = a.tokenizer.CountMessagesTokens(messages)
			agentDebugLog.Printf("Tokens after summarization: %d", promptTokens)
		}
	}

	return &promptContext{
		systemPrompt: systemPrompt,
		messages:     messages,
		promptTokens: promptTokens,
	}
}

// callLLM sends the request to the LLM and processes the streaming response
func (a *DefaultAgent) callLLM(ctx context.Context, pctx *promptContext) (*llmResponse, error) {
	// Emit API call start event with context information
	maxTokens := 0
	if a.contextManager != nil {
		maxTokens = a.contextManager.GetMaxTokens()
	}
	a.emitEvent(types.NewAPICallStartEvent("llm", pctx.promptTokens, maxTokens))

	// Get response from LLM
	stream, err := a.provider.StreamCompletion(ctx, pctx.messages)
	if err != nil {
		// Check if this is a context cancellation (user stopped the agent)
		if ctx.Err() != nil {
			return nil, ctx.Err() // Return context error for clean handling
		}
		// Terminal error - LLM/API failures should stop the loop
		a.emitEvent(types.NewErrorEvent(fmt.Errorf("failed to start completion: %w", err)))
		return nil, err
	}

	// Process stream and collect response
	var assistantContent string
	var toolCallContent string
	core.ProcessStream(stream, a.emitEvent, func(content, thinking, toolCall, role string) {
		assistantContent = content
		toolCallContent = toolCall
	})

	// Count completion tokens if tokenizer is available
	var completionTokens int
	if a.tokenizer != nil {
		fullResponse := assistantContent
		if toolCallContent != "" {
			fullResponse += toolCallContent
		}
		completionTokens = a.tokenizer.CountTokens(fullResponse)
	}

	return &llmResponse{
		assistantContent: assistantContent,
		toolCallContent:  toolCallContent,
		completionTokens: completionTokens,
	}, nil
}

// parseResponseToolCall extracts the tool call embedded in the LLM's
// response text (if any) and assigns it a fresh correlation ID. The ID is
// later used both on the assistant's ToolCalls entry and on the matching
// tool response message, so the memory core can pair them (P1-P4).
//
// Returns (nil, nil) when the response carried no tool call at all - that
// is a distinct, reportable condition from a present-but-malformed one.
func parseResponseToolCall(toolCallContent string) (*tools.ToolCall, error) {
	if toolCallContent == "" {
		return nil, nil
	}
	toolCall, _, err := tools.ParseToolCall("<tool>" + toolCallContent + "</tool>")
	if err != nil {
		return nil, err
	}
	toolCall.ID = uuid.New().String()
	return toolCall, nil
}

// argumentsJSON renders a tool call's arguments as a JSON string for
// storage on types.ToolCall.ArgumentsJSON. The wire protocol itself is XML,
// so this is a best-effort re-encoding purely for the memory core's benefit.
func argumentsJSON(toolCall tools.ToolCall) string {
	argsMap, err := tools.XMLToMap(toolCall.GetArgumentsXML())
	if err != nil {
		return ""
	}
	encoded, err := json.Marshal(argsMap)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// recordResponse handles token usage events and adds the response to memory.
// toolCall is the already-parsed, ID-assigned tool call for this response
// (nil if the response carried none or it failed to parse) - recordResponse
// does not parse it itself so the same ID can be threaded to the tool
// execution path afterward.
func (a *DefaultAgent) recordResponse(pctx *promptContext, resp *llmResponse, toolCall *tools.ToolCall) {
	// Emit token usage event if we have token counts
	if pctx.promptTokens > 0 || resp.completionTokens > 0 {
		totalTokens := pctx.promptTokens + resp.completionTokens
		a.emitEvent(types.NewTokenUsageEvent(pctx.promptTokens, resp.completionTokens, totalTokens))
	}

	// Content keeps carrying the exact text the LLM produced, including the
	// raw <tool> block, regardless of whether it parsed cleanly - this is
	// what actually goes out over the wire on the next call.
	fullResponse := resp.assistantContent
	if resp.toolCallContent != "" {
		fullResponse += "<tool>" + resp.toolCallContent + "</tool>"
	}

	if toolCall == nil {
		a.memory.Add(types.NewAssistantMessage(fullResponse))
		return
	}

	a.memory.Add(types.NewAssistantToolCallMessage(fullResponse, []types.ToolCall{
		{ID: toolCall.ID, FunctionName: toolCall.ToolName, ArgumentsJSON: argumentsJSON(*toolCall)},
	}))
}

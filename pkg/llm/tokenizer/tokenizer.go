// Package tokenizer provides accurate token counting for LLM prompts and
// conversation history, backed by tiktoken's cl100k_base encoding.
package tokenizer

import (
	"fmt"

	"github.com/entrhq/forge/pkg/types"
	"github.com/pkoukk/tiktoken-go"
)

// encodingName is the BPE encoding used by GPT-3.5/GPT-4 class models, which
// is the closest approximation available for providers that don't expose
// their own tokenizer.
const encodingName = "cl100k_base"

// perMessageOverhead is the fixed per-message token cost OpenAI's accounting
// convention uses on top of content tokens (role + formatting boilerplate).
const perMessageOverhead = 4

// Tokenizer counts tokens using tiktoken's BPE encoder. It is safe for
// concurrent use; the underlying encoder holds no mutable state.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// New creates a Tokenizer using the cl100k_base encoding.
func New() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", encodingName, err)
	}
	return &Tokenizer{enc: enc}, nil
}

// CountTokens returns the number of BPE tokens in text.
func (t *Tokenizer) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

// CountMessagesTokens returns the total token cost of a message slice as it
// would be sent to the LLM: each message's content, plus its tool calls'
// function name and arguments, plus a tool response's tool name, plus a
// fixed per-message overhead for role/formatting boilerplate.
func (t *Tokenizer) CountMessagesTokens(messages []*types.Message) int {
	total := 0
	for _, msg := range messages {
		total += perMessageOverhead
		total += t.CountTokens(msg.Content)

		for _, tc := range msg.ToolCalls {
			total += t.CountTokens(tc.ID)
			total += t.CountTokens(tc.FunctionName)
			total += t.CountTokens(tc.ArgumentsJSON)
		}

		if msg.Role == types.RoleTool {
			total += t.CountTokens(msg.ToolCallID)
			total += t.CountTokens(msg.Name)
		}
	}
	return total
}

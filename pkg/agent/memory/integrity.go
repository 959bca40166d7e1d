package memory

import (
	"fmt"

	"github.com/entrhq/forge/pkg/types"
)

// validateIntegrity checks I2/I9/I10 against a candidate message list: no
// orphan tool responses, and every assistant tool-call message's responses
// are all present or all absent together. The optimizer already enforces
// this by construction (it only ever removes a whole pair/group at once),
// so a failure here indicates a bug rather than expected input — callers
// treat it as an integrity error per §7 and discard the optimization.
func validateIntegrity(messages []*types.Message) error {
	present := make(map[string]bool, len(messages))
	for _, msg := range messages {
		if msg.Role == types.RoleAssistant {
			for _, tc := range msg.ToolCalls {
				present[tc.ID] = true
			}
		}
	}

	for _, msg := range messages {
		if msg.Role == types.RoleTool && msg.ToolCallID != "" && !present[msg.ToolCallID] {
			return fmt.Errorf("orphan tool response for tool_call_id %q", msg.ToolCallID)
		}
	}

	respondedBy := make(map[string]bool, len(messages))
	for _, msg := range messages {
		if msg.Role == types.RoleTool && msg.ToolCallID != "" {
			respondedBy[msg.ToolCallID] = true
		}
	}

	for _, msg := range messages {
		if msg.Role != types.RoleAssistant || len(msg.ToolCalls) < 2 {
			continue
		}
		anyPresent, allPresent := false, true
		for _, tc := range msg.ToolCalls {
			if respondedBy[tc.ID] {
				anyPresent = true
			} else {
				allPresent = false
			}
		}
		if anyPresent && !allPresent {
			return fmt.Errorf("partial tool-call group: assistant message has a mix of retained and dropped responses")
		}
	}

	return nil
}

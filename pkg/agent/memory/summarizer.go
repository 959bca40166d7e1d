package memory

import (
	"fmt"

	"github.com/entrhq/forge/pkg/types"
)

// Summarizer replaces a message's content with a shorter string. The core
// ships a deterministic truncation summarizer; richer (LLM-backed)
// summarizers are a capability hook a host may supply instead (see
// pkg/agent/context's strategies).
type Summarizer func(msg *types.Message) string

// defaultSummarizer truncates long content behind a "[SUMMARY] ..." prefix.
// Content under the threshold is returned unchanged — the optimizer only
// accepts a summarization attempt if it strictly reduces token count.
func defaultSummarizer(msg *types.Message) string {
	content := msg.Content

	if msg.Role == types.RoleTool {
		if len(content) > 200 {
			return fmt.Sprintf("[SUMMARY] Tool %s executed: %s... [truncated]", msg.Name, content[:100])
		}
		return content
	}

	if msg.Role == types.RoleAssistant && len(content) > 300 {
		return fmt.Sprintf("[SUMMARY] Assistant response: %s... [truncated]", content[:150])
	}

	if len(content) > 200 {
		return fmt.Sprintf("[SUMMARY] %s... [truncated]", content[:100])
	}

	return content
}

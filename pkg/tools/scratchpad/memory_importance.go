package scratchpad

// lowImportance is embedded by every scratchpad tool to satisfy
// tools.MemoryImportanceOverrider: note bookkeeping calls are ephemeral
// housekeeping, not task-relevant content, so their call/response pairs are
// pinned Low rather than inheriting the importance engine's Medium default
// for tool responses.
type lowImportance struct{}

func (lowImportance) MemoryImportance() (string, bool) {
	return "Low", true
}

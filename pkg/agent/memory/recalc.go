package memory

import "github.com/entrhq/forge/pkg/types"

// recalcAll rebuilds resolution state and every message's importance from
// scratch. It is the single source of truth both Add and
// RecalculateImportance rely on — see DESIGN.md for why this
// implementation recomputes globally on every append rather than
// replicating the source's incremental neighbor patch: the core's own
// invariants (I1, I3, I4) require global consistency, and a full pass over
// a bounded conversation is cheap relative to the LLM round trip it
// precedes.
func recalcAll(
	messages []*types.Message,
	metas []*MessageMetadata,
	pairIndex *PairIndex,
	overrides ToolImportanceOverride,
	numInitialCritical, numRecentHigh int,
	isRecovery ErrorRecoveryFunc,
	errorDetector ErrorDetector,
) {
	runResolutionPass(metas, isRecovery)

	pairs := computePositionalPairs(messages, pairIndex)

	firstUserIdx, lastUserIdx := -1, -1
	for i, m := range metas {
		if m.MessageType == TypeUserQuery {
			if firstUserIdx == -1 {
				firstUserIdx = i
			}
			lastUserIdx = i
		}
	}

	engine := newImportanceEngine(numInitialCritical, numRecentHigh, overrides)
	for i, m := range metas {
		contentLen := len(messages[i].Content)
		m.Importance = engine.evaluate(i, m, contentLen, i == firstUserIdx, i == lastUserIdx, pairs)
	}

	syncPairImportance(metas, pairIndex, overrides)
}

// buildMetadata creates the metadata record for a newly appended message.
// Importance starts at Low (finalized by the following recalcAll pass, per
// the lifecycle in §3: "created at append time with a preliminary Low
// importance, then finalized after pair/resolution passes").
func buildMetadata(msg *types.Message, errorDetector ErrorDetector, now Clock) *MessageMetadata {
	msgType := classifyMessage(msg)
	meta := newMessageMetadata(msgType, now(), 0)
	meta.FunctionName = functionNameFor(msg)

	if msg.Role == types.RoleTool {
		meta.ToolCallID = msg.ToolCallID
		if errorDetector(msg.Content) {
			meta.IsError = true
			meta.MessageType = TypeToolError
		}
	}

	return meta
}

package memory

// defaultNumInitialPairsCritical is N0: how many leading pairs are Critical
// in conversations longer than 10 messages (R6).
const defaultNumInitialPairsCritical = 3

// defaultNumRecentPairsHighImportance is N1: how many trailing pairs are
// High regardless of conversation length (R7).
const defaultNumRecentPairsHighImportance = 3

// assistantTextMediumThreshold is the content-length cutoff above which an
// assistant text response is Medium instead of Low (R9).
const assistantTextMediumThreshold = 500

// importanceEngine evaluates the layered rule system (R1-R12) against one
// message's metadata and positional context. It holds the two tunable
// window sizes and the tool-override table; everything else is pure.
type importanceEngine struct {
	numInitialPairsCritical int
	numRecentPairsHigh      int
	overrides               ToolImportanceOverride
}

func newImportanceEngine(numInitial, numRecent int, overrides ToolImportanceOverride) *importanceEngine {
	return &importanceEngine{
		numInitialPairsCritical: numInitial,
		numRecentPairsHigh:      numRecent,
		overrides:               overrides,
	}
}

// evaluate computes the importance of the message at idx given the full
// positional pair list and whether a later user message exists.
//
// Rule order is documented in DESIGN.md: it departs from the literal
// source order (resolved-error checked before position) so that R7
// (recency) takes precedence over R12 (resolved-error demotion) for
// pairs inside the last-N1 window, per the boundary behavior in spec §8.
func (e *importanceEngine) evaluate(idx int, meta *MessageMetadata, contentLength int, isFirstUserQuery, isLastUserQuery bool, pairs []Pair) Importance {
	// R1
	if meta.MessageType == TypeSystem {
		return Critical
	}
	// R2
	if meta.MessageType == TypeUserQuery && isFirstUserQuery {
		return Critical
	}
	// R3
	if meta.MessageType == TypeFinalAnswer || meta.MessageType == TypeQuestionToUser {
		return High
	}
	// R4
	if meta.IsError && !meta.ErrorResolved {
		return High
	}
	// R5
	if meta.FunctionName != "" {
		if override, ok := e.overrides[meta.FunctionName]; ok {
			return override
		}
	}

	// R6/R7 — position-based, using the pair containing idx.
	if pairIdx, total, ok := findPairIndex(idx, pairs); ok {
		totalMessages := pairTotalMessages(pairs)
		if totalMessages > 10 && pairIdx < e.numInitialPairsCritical {
			return Critical
		}
		if pairIdx >= total-e.numRecentPairsHigh {
			return High
		}
	}

	// R12 — only reached when R7 did not already match.
	if meta.IsError && meta.ErrorResolved {
		return Low
	}

	// R8
	if meta.MessageType == TypeUserQuery {
		if isLastUserQuery {
			return Medium
		}
		return High
	}
	// R9
	if meta.MessageType == TypeAssistantResponse {
		if contentLength > assistantTextMediumThreshold {
			return Medium
		}
		return Low
	}
	// R10
	if meta.MessageType == TypeToolResponse {
		return Medium
	}
	// R11
	return Low
}

// findPairIndex returns the index of the pair containing idx within pairs,
// and the total pair count.
func findPairIndex(idx int, pairs []Pair) (pairIdx int, total int, ok bool) {
	for i, p := range pairs {
		if idx >= p.Start && idx <= p.End {
			return i, len(pairs), true
		}
	}
	return 0, len(pairs), false
}

// pairTotalMessages returns the number of individual messages covered by
// pairs (used for the >10-messages gate on R6, which counts messages, not
// pairs).
func pairTotalMessages(pairs []Pair) int {
	total := 0
	for _, p := range pairs {
		total += p.End - p.Start + 1
	}
	return total
}

package memory

import (
	"sort"

	"github.com/entrhq/forge/pkg/types"
)

// optimizerGuardMessageCount is the minimum conversation length before the
// optimizer will consider removing anything. Below this, the cost/benefit
// of eviction is negative (§4.3 guard clause).
const optimizerGuardMessageCount = 10

const (
	reasonLessThan10Messages = "less_than_10_messages"
	reasonWithinLimits       = "within_limits"
	reasonCannotOptimize     = "cannot_optimize_without_removing_important_messages"
	reasonOptimized          = "optimized"
)

type optimizerConfig struct {
	maxTokens           int
	targetTokens        int
	enableSummarization bool
	strategy            RetentionStrategy
}

type removalCandidate struct {
	pair       Pair
	indices    []int
	tokens     int
	importance Importance
	meta       *MessageMetadata
}

// runOptimizer implements §4.3 end to end. It never mutates its inputs in
// place; it returns a fresh message/metadata/pair-index triple (or the
// original slices, unchanged, when action is None) plus an OptimizationInfo
// describing what happened.
func runOptimizer(
	messages []*types.Message,
	metas []*MessageMetadata,
	pairIndex *PairIndex,
	overrides ToolImportanceOverride,
	cfg optimizerConfig,
	counter func(*types.Message) int,
	summarizer Summarizer,
	numInitialCritical, numRecentHigh int,
	clock Clock,
	isRecovery ErrorRecoveryFunc,
	errorDetector ErrorDetector,
	stats *MemoryStats,
) ([]*types.Message, []*MessageMetadata, *PairIndex, OptimizationInfo) {
	if len(messages) < optimizerGuardMessageCount {
		return messages, metas, pairIndex, OptimizationInfo{Action: ActionNone, Reason: reasonLessThan10Messages}
	}

	// Step 1/2: recalc importance + pair sync against current state so the
	// optimizer always works off fresh numbers, regardless of when the
	// caller last triggered a recompute.
	recalcAll(messages, metas, pairIndex, overrides, numInitialCritical, numRecentHigh, isRecovery, errorDetector)

	originalTokens := 0
	for i, msg := range messages {
		metas[i].TokenCount = counter(msg)
		originalTokens += metas[i].TokenCount
	}

	if originalTokens <= cfg.targetTokens {
		return messages, metas, pairIndex, OptimizationInfo{
			Action:         ActionNone,
			Reason:         reasonWithinLimits,
			OriginalTokens: originalTokens,
			FinalTokens:    originalTokens,
		}
	}

	pressureBefore := memoryPressure(originalTokens, cfg.maxTokens)

	pairs := computePositionalPairs(messages, pairIndex)

	neverRemove := make([]bool, len(messages))
	for _, p := range pairs {
		protect := false
		for idx := p.Start; idx <= p.End; idx++ {
			if metas[idx].Importance == Critical || metas[idx].Importance == High || metas[idx].MessageType == TypeUserQuery {
				protect = true
				break
			}
		}
		if protect {
			for idx := p.Start; idx <= p.End; idx++ {
				neverRemove[idx] = true
			}
		}
	}

	var candidates []*removalCandidate
	for _, p := range pairs {
		if neverRemove[p.Start] {
			continue
		}
		imp := metas[p.Start].Importance
		if imp != Low && imp != Medium && imp != Temp {
			continue
		}
		indices := make([]int, 0, p.End-p.Start+1)
		tokens := 0
		for idx := p.Start; idx <= p.End; idx++ {
			indices = append(indices, idx)
			tokens += metas[idx].TokenCount
		}
		candidates = append(candidates, &removalCandidate{
			pair: p, indices: indices, tokens: tokens, importance: imp, meta: metas[p.Start],
		})
	}

	now := clock()
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].importance != candidates[j].importance {
			return candidates[i].importance < candidates[j].importance
		}
		return cfg.strategy.PriorityScore(candidates[i].meta, now) < cfg.strategy.PriorityScore(candidates[j].meta, now)
	})

	currentTokens := originalTokens
	removedSet := make(map[int]bool)
	summarizedSet := make(map[int]bool)
	summarizedContent := make(map[int]string)
	messagesRemoved := 0
	messagesSummarized := 0
	anyAction := false

	for _, cand := range candidates {
		if currentTokens <= cfg.targetTokens {
			break
		}
		pressure := memoryPressure(currentTokens, cfg.maxTokens)
		if cfg.strategy.ShouldKeep(cand.meta, pressure, now) {
			continue
		}

		if cfg.enableSummarization && len(cand.indices) == 1 {
			idx := cand.indices[0]
			meta := metas[idx]
			if meta.CanSummarize && meta.Summary == "" {
				newContent := summarizer(messages[idx])
				if newContent != messages[idx].Content {
					newTokens := counter(withContent(messages[idx], newContent))
					if newTokens < meta.TokenCount {
						currentTokens -= meta.TokenCount - newTokens
						summarizedSet[idx] = true
						summarizedContent[idx] = newContent
						messagesSummarized++
						anyAction = true
						continue
					}
				}
			}
		}

		for _, idx := range cand.indices {
			removedSet[idx] = true
		}
		currentTokens -= cand.tokens
		messagesRemoved += len(cand.indices)
		anyAction = true
	}

	if !anyAction {
		return messages, metas, pairIndex, OptimizationInfo{
			Action:               ActionNone,
			Reason:               reasonCannotOptimize,
			OriginalTokens:       originalTokens,
			FinalTokens:          originalTokens,
			MemoryPressureBefore: pressureBefore,
			MemoryPressureAfter:  pressureBefore,
		}
	}

	newMessages := make([]*types.Message, 0, len(messages))
	newMetas := make([]*MessageMetadata, 0, len(metas))
	for idx, msg := range messages {
		if removedSet[idx] {
			continue
		}
		if summarizedSet[idx] {
			summarized := withContent(msg, summarizedContent[idx])
			meta := *metas[idx]
			meta.Summary = summarized.Content
			meta.TokenCount = counter(summarized)
			newMessages = append(newMessages, summarized)
			newMetas = append(newMetas, &meta)
			continue
		}
		newMessages = append(newMessages, msg)
		newMetas = append(newMetas, metas[idx])
	}

	newPairIndex, toolPairsPreserved := rebuildPairIndexAfterOptimization(messages, newMessages)

	finalTokens := 0
	for _, m := range newMetas {
		finalTokens += m.TokenCount
	}
	pressureAfter := memoryPressure(finalTokens, cfg.maxTokens)

	importantPreserved := 0
	for _, m := range newMetas {
		if m.Importance == Critical || m.Importance == High {
			importantPreserved++
		}
	}

	stats.MessagesRemoved += messagesRemoved
	stats.MessagesSummarized += messagesSummarized
	stats.TokensSaved += originalTokens - finalTokens
	stats.MemoryOptimizations++

	return newMessages, newMetas, newPairIndex, OptimizationInfo{
		Action:                     ActionOptimized,
		Reason:                     reasonOptimized,
		OriginalTokens:             originalTokens,
		FinalTokens:                finalTokens,
		TokensSaved:                originalTokens - finalTokens,
		MessagesRemoved:            messagesRemoved,
		MessagesSummarized:         messagesSummarized,
		MemoryPressureBefore:       pressureBefore,
		MemoryPressureAfter:        pressureAfter,
		ToolPairsPreserved:         toolPairsPreserved,
		ImportantMessagesPreserved: importantPreserved,
	}
}

func memoryPressure(totalTokens, maxTokens int) float64 {
	if maxTokens <= 0 {
		return 1
	}
	p := float64(totalTokens) / float64(maxTokens)
	if p > 1 {
		return 1
	}
	return p
}

// withContent returns a shallow copy of msg with Content replaced; used so
// summarization never mutates a message already referenced elsewhere (e.g.
// by the caller's own copy of the pre-optimization list).
func withContent(msg *types.Message, content string) *types.Message {
	clone := *msg
	clone.Content = content
	return &clone
}

// rebuildPairIndexAfterOptimization remaps tool-call pairs onto the
// optimized message list's new indices, dropping any pair whose call or
// response did not survive (I2, I9, I10 are enforced structurally: the
// candidate grouping above only ever removes a whole pair together, so in
// practice every surviving pair's both sides survive — this pass also
// catches any orphan left by a future change to the removal logic).
func rebuildPairIndexAfterOptimization(original, optimized []*types.Message) (*PairIndex, int) {
	newIndexByMessage := make(map[*types.Message]int, len(optimized))
	for i, m := range optimized {
		newIndexByMessage[m] = i
	}

	idx := newPairIndex()
	preserved := 0
	for i, msg := range original {
		if msg.Role != types.RoleAssistant || !msg.HasToolCalls() {
			continue
		}
		newCallIdx, callSurvived := newIndexByMessage[msg]
		for _, tc := range msg.ToolCalls {
			respOrigIdx := findToolResponseIndex(original, tc.ID, i)
			if respOrigIdx < 0 {
				continue
			}
			respMsg := original[respOrigIdx]
			newRespIdx, respSurvived := newIndexByMessage[respMsg]
			if !callSurvived || !respSurvived {
				continue
			}
			idx.registerCall(tc.ID, newCallIdx)
			idx.completeResponse(tc.ID, newRespIdx)
			preserved++
		}
	}
	return idx, preserved
}

func findToolResponseIndex(messages []*types.Message, toolCallID string, after int) int {
	for i := after + 1; i < len(messages); i++ {
		if messages[i].Role == types.RoleTool && messages[i].ToolCallID == toolCallID {
			return i
		}
	}
	return -1
}

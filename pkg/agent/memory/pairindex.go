package memory

import (
	"sort"

	"github.com/entrhq/forge/pkg/types"
)

// PairIndex maps a tool_call_id to its call/response positions. A single
// assistant message may register many tool_call_ids; each is an
// independent entry even though they share the same CallIndex.
type PairIndex struct {
	byToolCallID map[string]*ToolPair
}

func newPairIndex() *PairIndex {
	return &PairIndex{byToolCallID: make(map[string]*ToolPair)}
}

// registerCall records that the assistant message at callIdx issued a tool
// call with the given id. Idempotent re-registration (e.g. during a global
// rebuild) overwrites the prior entry for the same id.
func (p *PairIndex) registerCall(toolCallID string, callIdx int) {
	p.byToolCallID[toolCallID] = &ToolPair{
		ToolCallID:    toolCallID,
		CallIndex:     callIdx,
		ResponseIndex: -1,
	}
}

// completeResponse matches a tool response at idx to its prior call.
// Returns false if no prior call was registered for toolCallID (an orphan
// response per P2).
func (p *PairIndex) completeResponse(toolCallID string, idx int) bool {
	pair, ok := p.byToolCallID[toolCallID]
	if !ok {
		return false
	}
	pair.ResponseIndex = idx
	return true
}

func (p *PairIndex) lookup(toolCallID string) (*ToolPair, bool) {
	pair, ok := p.byToolCallID[toolCallID]
	return pair, ok
}

// all returns every registered tool pair, ordered by call index for
// deterministic iteration.
func (p *PairIndex) all() []*ToolPair {
	out := make([]*ToolPair, 0, len(p.byToolCallID))
	for _, pair := range p.byToolCallID {
		out = append(out, pair)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CallIndex != out[j].CallIndex {
			return out[i].CallIndex < out[j].CallIndex
		}
		return out[i].ToolCallID < out[j].ToolCallID
	})
	return out
}

// reset clears every entry; used when rebuilding the index from scratch
// (global recompute, optimizer commit, deserialization).
func (p *PairIndex) reset() {
	p.byToolCallID = make(map[string]*ToolPair)
}

// maxPairConstructionFactor bounds the P1 loop at 2*|messages| iterations,
// guaranteeing termination even against corrupted pairing state.
const maxPairConstructionFactor = 2

// computePositionalPairs implements P1: it walks messages in order and
// produces the list of pair ranges used by the position-based importance
// rules (R6/R7). It consults the live PairIndex to find a tool call's
// matching response rather than re-deriving pairing from scratch.
func computePositionalPairs(messages []*types.Message, pairIndex *PairIndex) []Pair {
	n := len(messages)
	pairs := make([]Pair, 0, n)

	maxIterations := maxPairConstructionFactor * n
	i := 0
	iterations := 0
	for i < n && iterations < maxIterations {
		iterations++
		msg := messages[i]

		switch {
		case msg.Role == types.RoleSystem:
			pairs = append(pairs, Pair{Start: i, End: i})
			i++

		case msg.Role == types.RoleUser:
			if i+1 < n && isAssistantOrTerminal(messages[i+1]) {
				pairs = append(pairs, Pair{Start: i, End: i + 1})
				i += 2
			} else {
				pairs = append(pairs, Pair{Start: i, End: i})
				i++
			}

		case msg.Role == types.RoleAssistant && msg.HasToolCalls():
			end := i
			for _, tc := range msg.ToolCalls {
				if pair, ok := pairIndex.lookup(tc.ID); ok && pair.ResponseIndex > i && pair.ResponseIndex > end {
					end = pair.ResponseIndex
				}
			}
			pairs = append(pairs, Pair{Start: i, End: end})
			i = end + 1

		default:
			pairs = append(pairs, Pair{Start: i, End: i})
			i++
		}
	}

	// Bounded-loop safety net (§5 re-entrancy guard, §7 pair-construction
	// timeout): if corrupted state prevented the loop from consuming every
	// message, emit single-message pairs for whatever remains so every
	// index still belongs to exactly one pair.
	for ; i < n; i++ {
		pairs = append(pairs, Pair{Start: i, End: i})
	}

	return pairs
}

// isAssistantOrTerminal reports whether msg can close a user->X pair per
// P1: an assistant text/tool-call message, or a final-answer/question
// message (which are also assistant-role messages distinguished by content
// shape rather than a separate Role).
func isAssistantOrTerminal(msg *types.Message) bool {
	return msg.Role == types.RoleAssistant
}

// pairForIndex returns the pair containing idx, or a degenerate
// single-message pair if idx falls outside every computed pair (should not
// happen given computePositionalPairs covers every index exactly once).
func pairForIndex(pairs []Pair, idx int) Pair {
	for _, p := range pairs {
		if idx >= p.Start && idx <= p.End {
			return p
		}
	}
	return Pair{Start: idx, End: idx}
}

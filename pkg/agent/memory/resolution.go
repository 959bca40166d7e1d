package memory

import "strings"

// defaultErrorPrefixes is the default error-detection vocabulary: a tool
// response is an error if its lowercased content starts with any of these.
// Prefix-match only (see the resolved Open Question in DESIGN.md) — the
// source vocabulary also contained substring-match entries that turned out
// to be dead code relative to the real resolution logic.
var defaultErrorPrefixes = []string{
	"error", "error executing", "failed to", "unable to",
	"could not", "cannot", "exception:", "traceback",
	"failed", "exception", "invalid",
	"not found", "permission denied", "timeout", "connection refused",
	"unauthorized", "forbidden", "bad request", "internal server error",
	"syntax error", "runtime error", "type error", "value error",
	"file not found", "access denied", "network error",
}

// ErrorDetector decides whether a tool response message represents an
// error. Hosts may supply their own to override the default prefix-match
// vocabulary.
type ErrorDetector func(content string) bool

func defaultErrorDetector(content string) bool {
	lower := strings.ToLower(content)
	for _, prefix := range defaultErrorPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// ErrorRecoveryFunc decides whether a later success for the same function
// counts as resolving an earlier error. The default requires only that the
// success occur after the error for the same function_name; hosts may
// tighten this (e.g. require identical arguments).
type ErrorRecoveryFunc func(errorMeta, successMeta *MessageMetadata, errIdx, successIdx int) bool

func defaultErrorRecovery(errorMeta, successMeta *MessageMetadata, errIdx, successIdx int) bool {
	return successIdx > errIdx
}

// runResolutionPass implements P3: partition tool-message metadata into
// errors and successes keyed by function_name, and for every error mark it
// resolved if isRecovery says a later success for the same function
// resolves it. Mutates metadata in place; does not touch importance.
func runResolutionPass(metas []*MessageMetadata, isRecovery ErrorRecoveryFunc) {
	if isRecovery == nil {
		isRecovery = defaultErrorRecovery
	}

	byFunction := make(map[string][]int) // function_name -> tool-response indices, in order
	for idx, m := range metas {
		if m.MessageType == TypeToolResponse || m.MessageType == TypeToolError {
			byFunction[m.FunctionName] = append(byFunction[m.FunctionName], idx)
		}
	}

	for _, indices := range byFunction {
		for _, e := range indices {
			errMeta := metas[e]
			if !errMeta.IsError {
				continue
			}
			if errMeta.ErrorResolved {
				continue
			}
			for _, s := range indices {
				if s <= e {
					continue
				}
				succMeta := metas[s]
				if succMeta.IsError {
					continue
				}
				if isRecovery(errMeta, succMeta, e, s) {
					errMeta.ErrorResolved = true
					errMeta.ResolvedByIdx = s
					break
				}
			}
		}
	}
}

// syncPairImportance implements P4: after importance is computed, bring
// every pair's two sides into agreement, then propagate the result up to
// multi-tool-call assistant messages.
func syncPairImportance(metas []*MessageMetadata, pairIndex *PairIndex, overrides ToolImportanceOverride) {
	callChildren := make(map[int][]int) // assistant call index -> response indices

	for _, pair := range pairIndex.all() {
		if pair.ResponseIndex < 0 {
			continue
		}
		callMeta := metas[pair.CallIndex]
		respMeta := metas[pair.ResponseIndex]

		var synced Importance
		switch {
		// A resolved error demotes both sides to Low, unless the recency
		// rule (R7) already raised one of them to High/Critical — R7 takes
		// precedence over R12 inside the last-N1 window.
		case respMeta.ErrorResolved && callMeta.Importance < High && respMeta.Importance < High:
			synced = Low
		default:
			if override, ok := lookupOverride(overrides, callMeta, respMeta); ok {
				synced = override
			} else {
				synced = maxImportance(callMeta.Importance, respMeta.Importance)
			}
		}

		callMeta.Importance = synced
		respMeta.Importance = synced

		callChildren[pair.CallIndex] = append(callChildren[pair.CallIndex], pair.ResponseIndex)
	}

	// Multi-tool-call assistant messages: the call message's importance is
	// the max over all of its responses, computed after the per-pair pass
	// above so every response already reflects its synced value.
	for callIdx, responses := range callChildren {
		if len(responses) < 2 {
			continue
		}
		best := metas[callIdx].Importance
		for _, r := range responses {
			best = maxImportance(best, metas[r].Importance)
		}
		metas[callIdx].Importance = best
		for _, r := range responses {
			metas[r].Importance = best
		}
	}
}

func lookupOverride(overrides ToolImportanceOverride, callMeta, respMeta *MessageMetadata) (Importance, bool) {
	if overrides == nil {
		return 0, false
	}
	if imp, ok := overrides[callMeta.FunctionName]; ok {
		return imp, true
	}
	if imp, ok := overrides[respMeta.FunctionName]; ok {
		return imp, true
	}
	return 0, false
}

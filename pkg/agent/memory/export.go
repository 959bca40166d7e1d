package memory

// Export returns every message at or above min, each paired with a
// snapshot of its metadata. Without includeMetadata the snapshot carries
// only the importance; with it, the Summary field is cleared unless
// includeSummaries is set.
func (c *ConversationMemory) Export(min Importance, includeMetadata, includeSummaries bool) []ExportedMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]ExportedMessage, 0, len(c.messages))
	for i, msg := range c.messages {
		meta := *c.metas[i]
		if meta.Importance < min {
			continue
		}
		if !includeMetadata {
			meta = MessageMetadata{Importance: meta.Importance}
		} else if !includeSummaries {
			meta.Summary = ""
		}
		out = append(out, ExportedMessage{Index: i, Message: msg, Metadata: meta})
	}
	return out
}

// ExportPairs groups messages by their positional pair (§4.2 P1) and
// includes a pair only if at least one of its messages meets min — this is
// the "any-meets-threshold includes the whole pair" rule from the source,
// which keeps a call visible alongside a response that alone would have
// been filtered out, and vice versa.
func (c *ConversationMemory) ExportPairs(min Importance) [][]ExportedMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pairs := computePositionalPairs(c.messages, c.pairIndex)
	out := make([][]ExportedMessage, 0, len(pairs))

	for _, p := range pairs {
		group := make([]ExportedMessage, 0, p.End-p.Start+1)
		meetsThreshold := false
		for idx := p.Start; idx <= p.End; idx++ {
			meta := *c.metas[idx]
			if meta.Importance >= min {
				meetsThreshold = true
			}
			group = append(group, ExportedMessage{Index: idx, Message: c.messages[idx], Metadata: meta})
		}
		if meetsThreshold {
			out = append(out, group)
		}
	}
	return out
}

// ExportToolPairs returns every tool-call pair's metadata, skipping
// resolved-error pairs unless includeResolvedErrors is set.
func (c *ConversationMemory) ExportToolPairs(includeResolvedErrors bool) []PairInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]PairInfo, 0)
	for _, pair := range c.pairIndex.all() {
		if pair.ResponseIndex < 0 || pair.ResponseIndex >= len(c.metas) || pair.CallIndex >= len(c.metas) {
			continue
		}
		respMeta := c.metas[pair.ResponseIndex]
		if !includeResolvedErrors && respMeta.IsError && respMeta.ErrorResolved {
			continue
		}
		out = append(out, PairInfo{
			ToolCallID:    pair.ToolCallID,
			FunctionName:  respMeta.FunctionName,
			CallIndex:     pair.CallIndex,
			ResponseIndex: pair.ResponseIndex,
			IsError:       respMeta.IsError,
			ErrorResolved: respMeta.ErrorResolved,
			Importance:    respMeta.Importance,
		})
	}
	return out
}

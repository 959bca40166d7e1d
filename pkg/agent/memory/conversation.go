// Package memory bounds the context window of a long-running agent loop.
// It assigns every message an importance level, tracks tool-call/response
// pairs and whether their errors were later resolved, and — when token
// usage exceeds a target — evicts or summarizes the least important
// messages without breaking pairing or ordering invariants.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/forge/pkg/logging"
	"github.com/entrhq/forge/pkg/types"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("memory")
	if err != nil {
		debugLog.Warnf("Failed to initialize memory logger, using stderr fallback: %v", err)
	}
}

// recalcEveryNAppends is K in "automatically every K appends" (§4.1
// recalculation triggers). Add already recomputes after every append, so
// the counter it resets triggers nothing by itself.
const recalcEveryNAppends = 5

// Memory is the narrow interface the rest of the agent loop depends on.
// ConversationMemory satisfies it; a hand-rolled fake may too, for tests
// that don't need the full rule engine.
type Memory interface {
	Add(msg *types.Message)
	AddMultiple(msgs []*types.Message)
	GetAll() []*types.Message
	Clear()
}

// ConversationMemory is the facade described in §4.4: it owns the message
// vector, its metadata, the tool-call pair index, and the token-budget
// optimizer, and exposes the hooks and query operations a host agent loop
// binds to.
type ConversationMemory struct {
	mu sync.RWMutex

	messages  []*types.Message
	metas     []*MessageMetadata
	pairIndex *PairIndex
	overrides ToolImportanceOverride

	maxTokens               int
	targetTokens            int
	enableSummarization     bool
	strategy                RetentionStrategy
	numInitialPairsCritical int
	numRecentPairsHigh      int

	tokenCounter  func(*types.Message) int
	summarizer    Summarizer
	errorDetector ErrorDetector
	errorRecovery ErrorRecoveryFunc
	clock         Clock

	appendsSinceRecalc int

	activeTasks     map[string]bool
	completedTasks  map[string]bool
	taskSummaries   map[string]string
	conversationSummary string

	stats MemoryStats
}

// Option configures a ConversationMemory at construction time.
type Option func(*ConversationMemory)

func WithMaxTokens(n int) Option      { return func(c *ConversationMemory) { c.maxTokens = n } }
func WithTargetTokens(n int) Option   { return func(c *ConversationMemory) { c.targetTokens = n } }
func WithStrategy(s RetentionStrategy) Option {
	return func(c *ConversationMemory) { c.strategy = s }
}
func WithSummarizationEnabled(enabled bool) Option {
	return func(c *ConversationMemory) { c.enableSummarization = enabled }
}
func WithRecentPairWindow(numInitialCritical, numRecentHigh int) Option {
	return func(c *ConversationMemory) {
		c.numInitialPairsCritical = numInitialCritical
		c.numRecentPairsHigh = numRecentHigh
	}
}
func WithTokenCounter(counter func(string) int) Option {
	return func(c *ConversationMemory) { c.tokenCounter = wrapTokenCounter(counter) }
}
func WithSummarizer(s Summarizer) Option { return func(c *ConversationMemory) { c.summarizer = s } }
func WithErrorDetector(d ErrorDetector) Option {
	return func(c *ConversationMemory) { c.errorDetector = d }
}
func WithErrorRecovery(f ErrorRecoveryFunc) Option {
	return func(c *ConversationMemory) { c.errorRecovery = f }
}
func WithClock(c2 Clock) Option { return func(c *ConversationMemory) { c.clock = c2 } }

func wrapTokenCounter(counter func(string) int) func(*types.Message) int {
	return func(msg *types.Message) int {
		total := counter(msg.Content)
		for _, tc := range msg.ToolCalls {
			total += counter(tc.ID) + counter(tc.FunctionName) + counter(tc.ArgumentsJSON)
		}
		if msg.Role == types.RoleTool {
			total += counter(msg.ToolCallID) + counter(msg.Name)
		}
		return total
	}
}

// approximateTokenCounter is the fallback pure counter used when the host
// doesn't supply a real tokenizer: roughly one token per four characters,
// matching the deterministic counter spec'd for testing.
func approximateTokenCounter(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}

// NewConversationMemory constructs a memory core with sane defaults: a
// 128k-token budget, an 100k-token target, the Balanced strategy,
// summarization enabled, and the default 3/3 critical/recency pair
// windows. Use options to override any of these.
func NewConversationMemory(opts ...Option) *ConversationMemory {
	c := &ConversationMemory{
		pairIndex:               newPairIndex(),
		overrides:               make(ToolImportanceOverride),
		maxTokens:               128_000,
		targetTokens:            100_000,
		enableSummarization:     true,
		strategy:                BalancedStrategy{},
		numInitialPairsCritical: defaultNumInitialPairsCritical,
		numRecentPairsHigh:      defaultNumRecentPairsHighImportance,
		tokenCounter:            wrapTokenCounter(approximateTokenCounter),
		summarizer:              defaultSummarizer,
		errorDetector:           defaultErrorDetector,
		errorRecovery:           defaultErrorRecovery,
		clock:                   time.Now,
		activeTasks:             make(map[string]bool),
		completedTasks:          make(map[string]bool),
		taskSummaries:           make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add appends a message and runs the on_message_added hook: backfill
// metadata, update the pair index, and run the global recompute
// (resolution pass plus importance for every message) after every append,
// which also accounts for positional drift in the recency window.
func (c *ConversationMemory) Add(msg *types.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addLocked(msg)
}

func (c *ConversationMemory) addLocked(msg *types.Message) {
	idx := len(c.messages)
	c.messages = append(c.messages, msg)

	meta := buildMetadata(msg, c.errorDetector, c.clock)
	meta.TokenCount = c.tokenCounter(msg)
	if taskID, ok := msg.Metadata["task_id"].(string); ok && taskID != "" {
		meta.PartOfTask = taskID
		if !c.completedTasks[taskID] {
			c.activeTasks[taskID] = true
		}
	}
	c.metas = append(c.metas, meta)

	if msg.Role == types.RoleAssistant && msg.HasToolCalls() {
		for _, tc := range msg.ToolCalls {
			c.pairIndex.registerCall(tc.ID, idx)
		}
	}
	if msg.Role == types.RoleTool && msg.ToolCallID != "" {
		if !c.pairIndex.completeResponse(msg.ToolCallID, idx) {
			debugLog.Warnf("orphan tool response at index %d: no prior call for tool_call_id %q", idx, msg.ToolCallID)
		}
	}

	recalcAll(c.messages, c.metas, c.pairIndex, c.overrides, c.numInitialPairsCritical, c.numRecentPairsHigh, c.errorRecovery, c.errorDetector)

	c.appendsSinceRecalc++
	if c.appendsSinceRecalc >= recalcEveryNAppends || len(c.messages) > optimizerGuardMessageCount {
		c.appendsSinceRecalc = 0
	}
}

// AddMultiple appends several messages in order, as a single batch.
func (c *ConversationMemory) AddMultiple(msgs []*types.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, msg := range msgs {
		c.addLocked(msg)
	}
}

// GetAll returns the live message list. Callers must treat it as
// read-only; the vector is co-owned by the memory manager (§5).
func (c *ConversationMemory) GetAll() []*types.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*types.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Clear empties the conversation and its per-message state (metadata,
// pair index, append counter). Stats, task tracking and tool overrides
// are kept.
func (c *ConversationMemory) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	c.metas = nil
	c.pairIndex.reset()
	c.appendsSinceRecalc = 0
}

// OnBeforeLLMCall runs the deterministic optimizer (§4.3) and, if it made
// any change, commits the optimized state as the conversation's new
// canonical state. Returns the (possibly unchanged) message list and the
// OptimizationInfo describing what happened.
func (c *ConversationMemory) OnBeforeLLMCall(ctx context.Context) ([]*types.Message, OptimizationInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg := optimizerConfig{
		maxTokens:           c.maxTokens,
		targetTokens:        c.targetTokens,
		enableSummarization: c.enableSummarization,
		strategy:            c.strategy,
	}

	newMessages, newMetas, newPairIndex, info := runOptimizer(
		c.messages, c.metas, c.pairIndex, c.overrides, cfg,
		c.tokenCounter, c.summarizer, c.numInitialPairsCritical, c.numRecentPairsHigh,
		c.clock, c.errorRecovery, c.errorDetector, &c.stats,
	)

	if info.Action == ActionOptimized {
		if err := validateIntegrity(newMessages); err != nil {
			debugLog.Warnf("optimizer output failed integrity check, discarding: %v", err)
			return c.snapshotMessages(), OptimizationInfo{Action: ActionNone, Reason: reasonCannotOptimize}
		}
		c.messages = newMessages
		c.metas = newMetas
		c.pairIndex = newPairIndex
	}

	return c.snapshotMessages(), info
}

func (c *ConversationMemory) snapshotMessages() []*types.Message {
	out := make([]*types.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// RegisterToolOverride pins a tool's importance across both sides of every
// pair naming it. Rejects an invalid importance value (validation errors
// bubble to the caller per §7).
func (c *ConversationMemory) RegisterToolOverride(name string, imp Importance) error {
	if imp < Temp || imp > Critical {
		return ErrInvalidOverride
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overrides[name] = imp
	c.recalculateLocked()
	return nil
}

// SetTokenThresholds validates and replaces the token budget used by the
// optimizer. Returns ErrInvalidThresholds if either value is non-positive
// or targetTokens exceeds maxTokens — an out-of-range threshold is a
// validation error (§7): it bubbles to the caller rather than being
// silently clamped.
func (c *ConversationMemory) SetTokenThresholds(maxTokens, targetTokens int) error {
	if maxTokens <= 0 || targetTokens <= 0 || targetTokens > maxTokens {
		return fmt.Errorf("%w: max_tokens=%d target_tokens=%d", ErrInvalidThresholds, maxTokens, targetTokens)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxTokens = maxTokens
	c.targetTokens = targetTokens
	return nil
}

// MarkTaskCompleted flips task_completed on every metadata record whose
// part_of_task matches taskID. It does not alter importance on its own
// (§4.4) — a resolved task's messages keep whatever importance the rule
// engine already assigned them.
func (c *ConversationMemory) MarkTaskCompleted(taskID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completedTasks[taskID] = true
	delete(c.activeTasks, taskID)
	for _, m := range c.metas {
		if m.PartOfTask == taskID {
			m.TaskCompleted = true
		}
	}
}

// ClearCompletedTasks forgets which tasks were completed (active-task
// bookkeeping only); it does not touch message metadata or importance, so
// I1 (|metadata| == |messages|) is never at risk.
func (c *ConversationMemory) ClearCompletedTasks() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completedTasks = make(map[string]bool)
}

// RecalculateImportance forces a full recompute of pairing, resolution,
// and importance across the whole conversation.
func (c *ConversationMemory) RecalculateImportance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recalculateLocked()
}

func (c *ConversationMemory) recalculateLocked() {
	recalcAll(c.messages, c.metas, c.pairIndex, c.overrides, c.numInitialPairsCritical, c.numRecentPairsHigh, c.errorRecovery, c.errorDetector)
}

// Stats returns a snapshot of cumulative optimizer activity.
func (c *ConversationMemory) Stats() MemoryStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// ResetStats zeroes the cumulative counters without touching the
// conversation itself.
func (c *ConversationMemory) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = MemoryStats{}
}

package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/entrhq/forge/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toolCallMsg(id, fn, args string) *types.Message {
	return types.NewAssistantToolCallMessage("", []types.ToolCall{{ID: id, FunctionName: fn, ArgumentsJSON: args}})
}

func TestConversationMemory_AddAndGetAll(t *testing.T) {
	c := NewConversationMemory()
	c.Add(types.NewSystemMessage("you are an agent"))
	c.Add(types.NewUserMessage("hello"))
	c.Add(types.NewAssistantMessage("hi there"))

	got := c.GetAll()
	require.Len(t, got, 3)
	assert.Equal(t, types.RoleUser, got[1].Role)

	// GetAll must be a copy: mutating it must not affect the stored slice.
	got[0] = types.NewUserMessage("tampered")
	assert.Equal(t, types.RoleSystem, c.GetAll()[0].Role)
}

func TestConversationMemory_Clear(t *testing.T) {
	c := NewConversationMemory()
	c.Add(types.NewUserMessage("hello"))
	c.Clear()
	assert.Empty(t, c.GetAll())
	assert.Empty(t, c.Export(Temp, true, true))
}

func TestConversationMemory_SystemMessageIsCritical(t *testing.T) {
	c := NewConversationMemory()
	c.Add(types.NewSystemMessage("system prompt"))

	exported := c.Export(Temp, true, true)
	require.Len(t, exported, 1)
	assert.Equal(t, Critical, exported[0].Metadata.Importance)
}

func TestConversationMemory_ToolPairImportanceSynced(t *testing.T) {
	c := NewConversationMemory()
	c.Add(types.NewUserMessage("run the thing"))
	c.Add(toolCallMsg("call-1", "do_thing", "{}"))
	c.Add(types.NewToolMessage("call-1", "do_thing", "done"))

	exported := c.Export(Temp, true, true)
	require.Len(t, exported, 3)
	// call and response must share the same importance after P4 sync.
	assert.Equal(t, exported[1].Metadata.Importance, exported[2].Metadata.Importance)
}

func TestConversationMemory_ErrorResolutionMarksResolved(t *testing.T) {
	c := NewConversationMemory()
	c.Add(types.NewUserMessage("read the file"))
	c.Add(toolCallMsg("call-1", "read_file", `{"path":"missing.txt"}`))
	c.Add(types.NewToolMessage("call-1", "read_file", "Error: file not found"))
	c.Add(toolCallMsg("call-2", "read_file", `{"path":"present.txt"}`))
	c.Add(types.NewToolMessage("call-2", "read_file", "file contents here"))

	exported := c.Export(Temp, true, true)
	require.Len(t, exported, 5)
	assert.True(t, exported[2].Metadata.IsError)
	assert.True(t, exported[2].Metadata.ErrorResolved)
	assert.Equal(t, 4, exported[2].Metadata.ResolvedByIdx)
}

func TestConversationMemory_RegisterToolOverride(t *testing.T) {
	c := NewConversationMemory()
	c.Add(types.NewUserMessage("take a note"))
	c.Add(toolCallMsg("call-1", "add_note", "{}"))
	c.Add(types.NewToolMessage("call-1", "add_note", "note added"))

	require.NoError(t, c.RegisterToolOverride("add_note", Low))

	exported := c.Export(Temp, true, true)
	require.Len(t, exported, 3)
	assert.Equal(t, Low, exported[1].Metadata.Importance)
	assert.Equal(t, Low, exported[2].Metadata.Importance)
}

func TestConversationMemory_RegisterToolOverride_InvalidImportance(t *testing.T) {
	c := NewConversationMemory()
	err := c.RegisterToolOverride("add_note", Importance(99))
	assert.ErrorIs(t, err, ErrInvalidOverride)
}

func TestConversationMemory_MarkTaskCompletedAndClear(t *testing.T) {
	c := NewConversationMemory()
	msg := types.NewUserMessage("do task A")
	msg.WithMetadata("task_id", "task-a")
	c.Add(msg)

	c.MarkTaskCompleted("task-a")
	exported := c.Export(Temp, true, true)
	require.Len(t, exported, 1)
	assert.True(t, exported[0].Metadata.TaskCompleted)
	assert.Equal(t, "task-a", exported[0].Metadata.PartOfTask)

	// ClearCompletedTasks only forgets bookkeeping, never message metadata.
	c.ClearCompletedTasks()
	exported = c.Export(Temp, true, true)
	assert.True(t, exported[0].Metadata.TaskCompleted)
}

func TestConversationMemory_OnBeforeLLMCall_NoOpBelowGuard(t *testing.T) {
	c := NewConversationMemory(WithMaxTokens(10), WithTargetTokens(5))
	c.Add(types.NewUserMessage("short"))

	_, info := c.OnBeforeLLMCall(context.Background())
	assert.Equal(t, ActionNone, info.Action)
}

func TestConversationMemory_OnBeforeLLMCall_OptimizesUnderPressure(t *testing.T) {
	clock := time.Now()
	c := NewConversationMemory(
		WithMaxTokens(200),
		WithTargetTokens(50),
		WithTokenCounter(func(s string) int { return len(s) }),
		WithClock(func() time.Time { return clock }),
	)

	c.Add(types.NewSystemMessage("you are an agent"))

	// A realistic mix of tool-call/response pairs. UserQuery messages are
	// neverRemove (I7) regardless of importance, so a pressure test has to
	// burn the budget on pairs the optimizer is actually allowed to touch:
	// the system message plus 9 tool pairs make 10 positional pairs, the
	// first 3 (system plus 2 tool pairs) land Critical (R6) and the last 3
	// land High (R7), leaving the 4 middle tool pairs at Medium - the only
	// candidates OnBeforeLLMCall can remove.
	for i := 0; i < 9; i++ {
		id := fmt.Sprintf("call-%d", i)
		c.Add(toolCallMsg(id, "search_files", `{"query":"filler query to burn through the token budget"}`))
		c.Add(types.NewToolMessage(id, "search_files", "a fairly long filler result to burn through the token budget quickly"))
	}

	// Balanced keeps Medium pairs younger than 7.5 minutes; age them past it.
	clock = clock.Add(time.Hour)

	before := len(c.GetAll())
	_, info := c.OnBeforeLLMCall(context.Background())
	after := len(c.GetAll())

	require.Equal(t, ActionOptimized, info.Action)
	assert.Less(t, after, before)
	assert.Greater(t, info.TokensSaved, 0)
	stats := c.Stats()
	assert.Equal(t, 1, stats.MemoryOptimizations)
}

func TestConversationMemory_ResetStats(t *testing.T) {
	c := NewConversationMemory()
	c.ResetStats()
	assert.Equal(t, MemoryStats{}, c.Stats())
}

func TestConversationMemory_SetTokenThresholds(t *testing.T) {
	c := NewConversationMemory()
	require.NoError(t, c.SetTokenThresholds(500, 300))

	err := c.SetTokenThresholds(100, 300)
	assert.ErrorIs(t, err, ErrInvalidThresholds)

	err = c.SetTokenThresholds(0, 0)
	assert.ErrorIs(t, err, ErrInvalidThresholds)
}

func TestConversationMemory_RecalculateImportance(t *testing.T) {
	c := NewConversationMemory()
	c.Add(types.NewUserMessage("hello"))
	c.RecalculateImportance()
	exported := c.Export(Temp, true, true)
	require.Len(t, exported, 1)
}

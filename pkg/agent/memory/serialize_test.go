package memory

import (
	"encoding/json"
	"testing"

	"github.com/entrhq/forge/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSerializable_FromSerializable_RoundTrip(t *testing.T) {
	c := NewConversationMemory(WithMaxTokens(4096), WithTargetTokens(2048))
	c.Add(types.NewSystemMessage("system prompt"))
	msg := types.NewUserMessage("do task A")
	msg.WithMetadata("task_id", "task-a")
	c.Add(msg)
	c.Add(toolCallMsg("call-1", "read_file", `{}`))
	c.Add(types.NewToolMessage("call-1", "read_file", "Error: file not found"))
	c.MarkTaskCompleted("task-a")

	payload := c.ToSerializable()
	assert.Equal(t, 4096, payload.MaxTokens)
	assert.Equal(t, 2048, payload.TargetTokens)
	assert.Contains(t, payload.CompletedTasks, "task-a")
	require.Len(t, payload.MessageMetadata, 4)

	// Payload must survive a real JSON round trip (what session.Store does).
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	var reloaded SerializablePayload
	require.NoError(t, json.Unmarshal(raw, &reloaded))

	rebuilt, err := FromSerializable(&reloaded, c.GetAll())
	require.NoError(t, err)

	original := c.Export(Temp, true, true)
	roundTripped := rebuilt.Export(Temp, true, true)
	require.Len(t, roundTripped, len(original))
	for i := range original {
		assert.Equal(t, original[i].Metadata.Importance, roundTripped[i].Metadata.Importance)
		assert.Equal(t, original[i].Metadata.MessageType, roundTripped[i].Metadata.MessageType)
		assert.Equal(t, original[i].Metadata.IsError, roundTripped[i].Metadata.IsError)
		assert.Equal(t, original[i].Metadata.ErrorResolved, roundTripped[i].Metadata.ErrorResolved)
		assert.Equal(t, original[i].Metadata.PartOfTask, roundTripped[i].Metadata.PartOfTask)
	}

	// Tool pairs must also survive, since FromSerializable rebuilds the pair
	// index from message shape rather than a serialized field.
	rebuiltPairs := rebuilt.ExportToolPairs(true)
	require.Len(t, rebuiltPairs, 1)
	assert.Equal(t, "call-1", rebuiltPairs[0].ToolCallID)
	assert.Equal(t, 3, rebuiltPairs[0].ResponseIndex)
}

func TestFromSerializable_MismatchedLengthErrors(t *testing.T) {
	payload := &SerializablePayload{
		MessageMetadata: make([]serializedMetadata, 2),
	}
	_, err := FromSerializable(payload, []*types.Message{types.NewUserMessage("only one")})
	assert.Error(t, err)
}

func TestFromSerializable_InvalidImportanceErrors(t *testing.T) {
	payload := &SerializablePayload{
		MessageMetadata: []serializedMetadata{
			{MessageType: "UserQuery", Importance: "NotARealLevel", CreatedAt: "2024-01-01T00:00:00Z"},
		},
	}
	_, err := FromSerializable(payload, []*types.Message{types.NewUserMessage("hi")})
	assert.ErrorIs(t, err, ErrInvalidImportance)
}

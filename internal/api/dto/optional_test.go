package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptionalStringAbsentVsNull(t *testing.T) {
	var req struct {
		AssignedToID OptionalString `json:"assigned_to_id"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{}`), &req))
	require.False(t, req.AssignedToID.Set)

	require.NoError(t, json.Unmarshal([]byte(`{"assigned_to_id":null}`), &req))
	require.True(t, req.AssignedToID.Set)
	require.Nil(t, req.AssignedToID.Value)

	require.NoError(t, json.Unmarshal([]byte(`{"assigned_to_id":"agent-1"}`), &req))
	require.True(t, req.AssignedToID.Set)
	require.NotNil(t, req.AssignedToID.Value)
	require.Equal(t, "agent-1", *req.AssignedToID.Value)
}

func TestOptionalStringRejectsNonString(t *testing.T) {
	var req struct {
		AssignedToID OptionalString `json:"assigned_to_id"`
	}
	require.Error(t, json.Unmarshal([]byte(`{"assigned_to_id":7}`), &req))
}

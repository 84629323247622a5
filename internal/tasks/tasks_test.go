package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteConversationTask(t *testing.T) {
	task, err := NewRouteConversationTask("c-1")
	require.NoError(t, err)
	assert.Equal(t, TypeRouteConversation, task.Type())

	p, err := ParseRouteConversationPayload(task.Payload())
	require.NoError(t, err)
	assert.Equal(t, "c-1", p.ConversationID)

	_, err = NewRouteConversationTask("")
	assert.Error(t, err)
	_, err = ParseRouteConversationPayload([]byte(`{}`))
	assert.Error(t, err)
	_, err = ParseRouteConversationPayload([]byte(`not json`))
	assert.Error(t, err)
}

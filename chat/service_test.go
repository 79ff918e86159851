package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabfab/study-agent/assistant"
	"github.com/fabfab/study-agent/models"
	"github.com/fabfab/study-agent/store"
)

type recordingResponder struct {
	query, context string
}

func (r *recordingResponder) Reply(_ context.Context, query, contextText string) string {
	r.query, r.context = query, contextText
	return "answer"
}

func seedDocument(t *testing.T, mem *store.Memory, d models.Document) {
	t.Helper()
	d.UploadDate = time.Now().UTC()
	require.NoError(t, mem.CreateDocument(context.Background(), &d))
}

func TestCreateDefaults(t *testing.T) {
	svc := NewService(store.NewMemory(), &recordingResponder{}, nil)

	chat, err := svc.Create(context.Background(), CreateRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultUserID, chat.UserID)
	assert.Equal(t, "New Chat", chat.Title)
	assert.NotNil(t, chat.DocumentIDs)
	assert.NotEmpty(t, chat.ID)

	list, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, chat.ID, list[0].ID)
}

func TestSendAppendsBothTurns(t *testing.T) {
	mem := store.NewMemory()
	seedDocument(t, mem, doc("kin", "Velocity is the rate of change of displacement.", "Unrelated page."))
	responder := &recordingResponder{}
	svc := NewService(mem, responder, nil)
	ctx := context.Background()

	chat, err := svc.Create(ctx, CreateRequest{UserID: "u1", DocumentIDs: []string{"kin", "gone"}})
	require.NoError(t, err)

	reply, err := svc.Send(ctx, chat.ID, "define velocity")
	require.NoError(t, err)
	assert.Equal(t, "answer", reply.Message.Content)
	assert.Equal(t, models.RoleAssistant, reply.Message.Role)
	require.Len(t, reply.Message.Citations, 1)
	assert.Equal(t, "kin", reply.Message.Citations[0].DocumentID)
	assert.Equal(t, "define velocity", responder.query)
	assert.Contains(t, responder.context, "Page 1: Velocity")

	stored, err := svc.Get(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, stored.Messages, 2)
	assert.Equal(t, models.RoleUser, stored.Messages[0].Role)
	assert.Equal(t, "define velocity", stored.Messages[0].Content)
	assert.False(t, stored.LastUpdated.Before(chat.LastUpdated))
}

func TestSendErrors(t *testing.T) {
	svc := NewService(store.NewMemory(), &recordingResponder{}, nil)

	_, err := svc.Send(context.Background(), "missing", "hello")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Send(context.Background(), "missing", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSendWithoutCredentialOrContext(t *testing.T) {
	mem := store.NewMemory()
	svc := NewService(mem, assistant.NewAssembler(nil, 0, nil), nil)
	ctx := context.Background()

	chat, err := svc.Create(ctx, CreateRequest{})
	require.NoError(t, err)

	reply, err := svc.Send(ctx, chat.ID, "explain torque")
	require.NoError(t, err)
	assert.Contains(t, reply.Message.Content, "I'd be happy to help, but I need access to your study materials first.")
	assert.Empty(t, reply.Message.Citations)
}

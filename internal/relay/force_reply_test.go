package relay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay-service/internal/models"
	"relay-service/internal/repositories"
)

func TestForceReplyReparentsTransmission(t *testing.T) {
	h := newHarness(t, alice, bob, carol)
	h.send(alice, 10, "hello")
	bobCopy := h.relayed(bob)[0]
	before, err := h.store.FindByReceiverCopy(context.Background(), bobCopy.MsgID, bob, testBot)
	require.NoError(t, err)
	require.NotNil(t, before)

	out := h.tap(CallbackReply, bobCopy, nil)

	assert.Equal(t, Outcome{Operation: OpForceReply, Success: true}, out)
	prompts := h.relayed(bob)
	require.Len(t, prompts, 2)
	prompt := prompts[1]
	assert.True(t, prompt.Opts.ForceReply)
	assert.Equal(t, "hello", prompt.Content.Text)
	assert.Equal(t, []string{"cb"}, h.platform.Answered())
	assert.Equal(t, [][2]int64{{bob, bobCopy.MsgID}}, h.platform.Deleted())

	old, err := h.store.Get(context.Background(), before.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuperseded, old.Status)
	require.NotNil(t, old.SupersededBy)

	current, err := h.store.FindByReceiverCopy(context.Background(), prompt.MsgID, bob, testBot)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, *old.SupersededBy, current.ID)
	assert.Equal(t, before.ID, *current.OriginalTransmissionID)
	assert.Equal(t, before.SenderMsgID, current.SenderMsgID)
	assert.Equal(t, before.TopicID, current.TopicID)

	gone, err := h.store.FindByReceiverCopy(context.Background(), bobCopy.MsgID, bob, testBot)
	require.NoError(t, err)
	assert.Nil(t, gone)

	chain, _, err := repositories.Ancestry(context.Background(), h.store, current.ID)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, current.ID, chain[0].ID)
	assert.Equal(t, before.ID, chain[1].ID)
}

func TestReplyToPromptReachesOriginalAuthor(t *testing.T) {
	h := newHarness(t, alice, bob)
	h.send(alice, 10, "hello")
	h.tap(CallbackReply, h.relayed(bob)[0], nil)
	prompt := h.relayed(bob)[1]

	out := h.reply(bob, 20, "answer", prompt.MsgID)

	assert.True(t, out.Success)
	private := h.relayed(alice)
	require.Len(t, private, 1)
	assert.Equal(t, "answer", private[0].Content.Text)
	assert.Equal(t, int64(10), *private[0].Opts.ReplyToMsgID)
}

func TestForceReplyThreadsUnderTappedMessageParent(t *testing.T) {
	h := newHarness(t, alice, bob)
	h.send(alice, 10, "hello")
	h.reply(bob, 20, "hi alice", h.relayed(bob)[0].MsgID)
	private := h.relayed(alice)[0]

	out := h.tap(CallbackReply, private, private.Opts.ReplyToMsgID)

	assert.True(t, out.Success)
	prompts := h.relayed(alice)
	require.Len(t, prompts, 2)
	require.NotNil(t, prompts[1].Opts.ReplyToMsgID)
	assert.Equal(t, int64(10), *prompts[1].Opts.ReplyToMsgID)
	assert.True(t, prompts[1].Opts.AllowWithoutReply)
}

func TestForceReplyOnUnknownCopyReportsConversationNotFound(t *testing.T) {
	h := newHarness(t, alice)

	out := h.tap(CallbackReply, mockCopy(alice, 4242), nil)

	assert.False(t, out.Success)
	assert.Equal(t, []string{TextsFor("en").TalkNotFound}, h.notices(alice))
	assert.Contains(t, h.platform.Cleared(), [2]int64{alice, 4242})
	assert.Empty(t, h.platform.Deleted())
}

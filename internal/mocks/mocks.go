package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"relay-service/internal/models"
	"relay-service/internal/platform"
)

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) ActiveRecipients(ctx context.Context, botID int64) ([]int64, error) {
	args := m.Called(ctx, botID)
	var ids []int64
	if val := args.Get(0); val != nil {
		ids = val.([]int64)
	}
	return ids, args.Error(1)
}

func (m *ChatRepositoryMock) Touch(ctx context.Context, chat models.Chat) (models.Chat, error) {
	args := m.Called(ctx, chat)
	var out models.Chat
	if val := args.Get(0); val != nil {
		out = val.(models.Chat)
	}
	return out, args.Error(1)
}

func (m *ChatRepositoryMock) GetChat(ctx context.Context, chatID, botID int64) (models.Chat, error) {
	args := m.Called(ctx, chatID, botID)
	var out models.Chat
	if val := args.Get(0); val != nil {
		out = val.(models.Chat)
	}
	return out, args.Error(1)
}

func (m *ChatRepositoryMock) SetAuthorized(ctx context.Context, chatID, botID int64, authorized bool) error {
	args := m.Called(ctx, chatID, botID, authorized)
	return args.Error(0)
}

type TransmissionRepositoryMock struct {
	mock.Mock
}

func (m *TransmissionRepositoryMock) Create(ctx context.Context, t models.Transmission) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TransmissionRepositoryMock) Get(ctx context.Context, id string) (models.Transmission, error) {
	args := m.Called(ctx, id)
	var t models.Transmission
	if val := args.Get(0); val != nil {
		t = val.(models.Transmission)
	}
	return t, args.Error(1)
}

func (m *TransmissionRepositoryMock) FindByReceiverCopy(ctx context.Context, receiverMsgID, receiverChatID, receiverBotID int64) (*models.Transmission, error) {
	args := m.Called(ctx, receiverMsgID, receiverChatID, receiverBotID)
	var t *models.Transmission
	if val := args.Get(0); val != nil {
		t = val.(*models.Transmission)
	}
	return t, args.Error(1)
}

func (m *TransmissionRepositoryMock) FindAllBySenderCopy(ctx context.Context, senderMsgID, senderChatID, senderBotID int64) ([]models.Transmission, error) {
	args := m.Called(ctx, senderMsgID, senderChatID, senderBotID)
	var list []models.Transmission
	if val := args.Get(0); val != nil {
		list = val.([]models.Transmission)
	}
	return list, args.Error(1)
}

func (m *TransmissionRepositoryMock) Supersede(ctx context.Context, oldID string, replacement models.Transmission) error {
	args := m.Called(ctx, oldID, replacement)
	return args.Error(0)
}

func (m *TransmissionRepositoryMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TransmissionRepositoryMock) PruneSuperseded(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

type TopicRepositoryMock struct {
	mock.Mock
}

func (m *TopicRepositoryMock) CreateTopic(ctx context.Context, topic models.Topic) error {
	args := m.Called(ctx, topic)
	return args.Error(0)
}

func (m *TopicRepositoryMock) GetTopic(ctx context.Context, id string) (models.Topic, error) {
	args := m.Called(ctx, id)
	var t models.Topic
	if val := args.Get(0); val != nil {
		t = val.(models.Topic)
	}
	return t, args.Error(1)
}

func (m *TopicRepositoryMock) CreateSubtopic(ctx context.Context, subtopic models.Subtopic) error {
	args := m.Called(ctx, subtopic)
	return args.Error(0)
}

func (m *TopicRepositoryMock) GetSubtopic(ctx context.Context, id string) (models.Subtopic, error) {
	args := m.Called(ctx, id)
	var s models.Subtopic
	if val := args.Get(0); val != nil {
		s = val.(models.Subtopic)
	}
	return s, args.Error(1)
}

type AllogroomingRepositoryMock struct {
	mock.Mock
}

func (m *AllogroomingRepositoryMock) CreateAllogrooming(ctx context.Context, a models.Allogrooming) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *AllogroomingRepositoryMock) FindAllogrooming(ctx context.Context, topicID string, senderChatID, senderBotID, receiverChatID, receiverBotID int64) (*models.Allogrooming, error) {
	args := m.Called(ctx, topicID, senderChatID, senderBotID, receiverChatID, receiverBotID)
	var a *models.Allogrooming
	if val := args.Get(0); val != nil {
		a = val.(*models.Allogrooming)
	}
	return a, args.Error(1)
}

type PlatformMock struct {
	mock.Mock
}

func (m *PlatformMock) BotID() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}

func (m *PlatformMock) Send(ctx context.Context, chatID int64, content platform.Content, opts platform.SendOptions) (*platform.Message, error) {
	args := m.Called(ctx, chatID, content, opts)
	var msg *platform.Message
	if val := args.Get(0); val != nil {
		msg = val.(*platform.Message)
	}
	return msg, args.Error(1)
}

func (m *PlatformMock) Edit(ctx context.Context, chatID, msgID int64, content platform.Content, keyboard *platform.Keyboard) (*platform.Message, error) {
	args := m.Called(ctx, chatID, msgID, content, keyboard)
	var msg *platform.Message
	if val := args.Get(0); val != nil {
		msg = val.(*platform.Message)
	}
	return msg, args.Error(1)
}

func (m *PlatformMock) ClearKeyboard(ctx context.Context, chatID, msgID int64) error {
	args := m.Called(ctx, chatID, msgID)
	return args.Error(0)
}

func (m *PlatformMock) Delete(ctx context.Context, chatID, msgID int64) error {
	args := m.Called(ctx, chatID, msgID)
	return args.Error(0)
}

func (m *PlatformMock) AnswerCallback(ctx context.Context, callbackID string) error {
	args := m.Called(ctx, callbackID)
	return args.Error(0)
}

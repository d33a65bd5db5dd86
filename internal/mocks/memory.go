package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"relay-service/internal/models"
	"relay-service/internal/repositories"
)

// MemoryStore is an in-memory implementation of every relay repository,
// used by scenario tests that exercise several operations in a row.
type MemoryStore struct {
	mu            sync.Mutex
	clock         time.Time
	chats         map[[2]int64]models.Chat
	topics        map[string]models.Topic
	subtopics     map[string]models.Subtopic
	allogroomings []models.Allogrooming
	transmissions []models.Transmission
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		chats:     map[[2]int64]models.Chat{},
		topics:    map[string]models.Topic{},
		subtopics: map[string]models.Subtopic{},
	}
}

// tick returns strictly increasing timestamps so insertion order is observable.
func (s *MemoryStore) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

// AddChat registers a chat directly, bypassing Touch.
func (s *MemoryStore) AddChat(chatID, botID int64, authorized bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	s.chats[[2]int64{chatID, botID}] = models.Chat{ChatID: chatID, BotID: botID, IsAuthorized: authorized, CreatedAt: now, UpdatedAt: now}
}

func (s *MemoryStore) ActiveRecipients(_ context.Context, botID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for key, chat := range s.chats {
		if key[1] == botID && chat.IsAuthorized {
			ids = append(ids, key[0])
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemoryStore) Touch(_ context.Context, chat models.Chat) (models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]int64{chat.ChatID, chat.BotID}
	now := s.tick()
	existing, ok := s.chats[key]
	if !ok {
		chat.IsAuthorized = false
		chat.CreatedAt = now
		chat.UpdatedAt = now
		s.chats[key] = chat
		return chat, nil
	}
	existing.Title = chat.Title
	existing.UpdatedAt = now
	s.chats[key] = existing
	return existing, nil
}

func (s *MemoryStore) GetChat(_ context.Context, chatID, botID int64) (models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[[2]int64{chatID, botID}]
	if !ok {
		return models.Chat{}, repositories.ErrChatNotFound
	}
	return chat, nil
}

func (s *MemoryStore) SetAuthorized(_ context.Context, chatID, botID int64, authorized bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]int64{chatID, botID}
	chat, ok := s.chats[key]
	if !ok {
		return repositories.ErrChatNotFound
	}
	chat.IsAuthorized = authorized
	chat.UpdatedAt = s.tick()
	s.chats[key] = chat
	return nil
}

func (s *MemoryStore) CreateTopic(_ context.Context, topic models.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	topic.CreatedAt = s.tick()
	s.topics[topic.ID] = topic
	return nil
}

func (s *MemoryStore) GetTopic(_ context.Context, id string) (models.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	topic, ok := s.topics[id]
	if !ok {
		return models.Topic{}, repositories.ErrTopicNotFound
	}
	return topic, nil
}

func (s *MemoryStore) CreateSubtopic(_ context.Context, subtopic models.Subtopic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	subtopic.CreatedAt = s.tick()
	s.subtopics[subtopic.ID] = subtopic
	return nil
}

func (s *MemoryStore) GetSubtopic(_ context.Context, id string) (models.Subtopic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subtopic, ok := s.subtopics[id]
	if !ok {
		return models.Subtopic{}, repositories.ErrSubtopicNotFound
	}
	return subtopic, nil
}

// Subtopics lists every stored subtopic in creation order.
func (s *MemoryStore) Subtopics() []models.Subtopic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Subtopic, 0, len(s.subtopics))
	for _, sub := range s.subtopics {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Topics returns the number of stored topics.
func (s *MemoryStore) Topics() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.topics)
}

func (s *MemoryStore) CreateAllogrooming(_ context.Context, a models.Allogrooming) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.CreatedAt = s.tick()
	s.allogroomings = append(s.allogroomings, a)
	return nil
}

func (s *MemoryStore) FindAllogrooming(_ context.Context, topicID string, senderChatID, senderBotID, receiverChatID, receiverBotID int64) (*models.Allogrooming, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.allogroomings {
		if a.TopicID == topicID && a.SenderChatID == senderChatID && a.SenderBotID == senderBotID &&
			a.ReceiverChatID == receiverChatID && a.ReceiverBotID == receiverBotID {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

// Allogroomings returns a copy of every stored allogrooming.
func (s *MemoryStore) Allogroomings() []models.Allogrooming {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Allogrooming(nil), s.allogroomings...)
}

var ErrDuplicateReceiverCopy = errors.New("active transmission already recorded for receiver copy")

func (s *MemoryStore) Create(_ context.Context, t models.Transmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(t)
}

func (s *MemoryStore) insertLocked(t models.Transmission) error {
	if t.Status == "" {
		t.Status = models.StatusActive
	}
	if t.Status == models.StatusActive {
		for _, row := range s.transmissions {
			if row.Status == models.StatusActive && row.ReceiverMsgID == t.ReceiverMsgID &&
				row.ReceiverChatID == t.ReceiverChatID && row.ReceiverBotID == t.ReceiverBotID {
				return ErrDuplicateReceiverCopy
			}
		}
	}
	t.CreatedAt = s.tick()
	s.transmissions = append(s.transmissions, t)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (models.Transmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.transmissions {
		if row.ID == id {
			return row, nil
		}
	}
	return models.Transmission{}, repositories.ErrTransmissionNotFound
}

func (s *MemoryStore) FindByReceiverCopy(_ context.Context, receiverMsgID, receiverChatID, receiverBotID int64) (*models.Transmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.transmissions {
		if row.Status == models.StatusActive && row.ReceiverMsgID == receiverMsgID &&
			row.ReceiverChatID == receiverChatID && row.ReceiverBotID == receiverBotID {
			found := row
			return &found, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) FindAllBySenderCopy(_ context.Context, senderMsgID, senderChatID, senderBotID int64) ([]models.Transmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Transmission
	for _, row := range s.transmissions {
		if row.Status == models.StatusActive && row.SenderMsgID == senderMsgID &&
			row.SenderChatID == senderChatID && row.SenderBotID == senderBotID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *MemoryStore) Supersede(_ context.Context, oldID string, replacement models.Transmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, row := range s.transmissions {
		if row.ID != oldID || row.Status != models.StatusActive {
			continue
		}
		s.transmissions[i].Status = models.StatusSuperseded
		s.transmissions[i].SupersededBy = &replacement.ID
		if err := s.insertLocked(replacement); err != nil {
			s.transmissions[i] = row
			return fmt.Errorf("insert replacement: %w", err)
		}
		return nil
	}
	return repositories.ErrTransmissionNotFound
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, row := range s.transmissions {
		if row.ID == id {
			s.transmissions = append(s.transmissions[:i], s.transmissions[i+1:]...)
			return nil
		}
	}
	return repositories.ErrTransmissionNotFound
}

func (s *MemoryStore) PruneSuperseded(_ context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.transmissions[:0]
	var pruned int64
	for _, row := range s.transmissions {
		if row.Status == models.StatusSuperseded && row.CreatedAt.Before(olderThan) {
			pruned++
			continue
		}
		kept = append(kept, row)
	}
	s.transmissions = kept
	return pruned, nil
}

// Transmissions returns a copy of every stored transmission in insertion order.
func (s *MemoryStore) Transmissions() []models.Transmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Transmission(nil), s.transmissions...)
}

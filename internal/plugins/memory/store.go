package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pratham-srivastava-07/Nexus/internal/core/domain"
)

// Store keeps the full data model in-process. It backs development and tests
// and mirrors the relational layout closely enough that the services cannot
// tell it apart from the SQL-backed repositories.
type Store struct {
	mu       sync.RWMutex
	users    map[string]domain.User   // id -> user
	phones   map[string]string        // phone -> user id
	rooms    map[string]domain.Room   // id -> room
	members  map[string]map[string]domain.RoomMember // roomID -> userID -> member
	messages map[string][]domain.Message             // roomID -> append-ordered
	byID     map[string]*msgRef                      // messageID -> location
	seq      int64
}

type msgRef struct {
	roomID string
	index  int
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]domain.User),
		phones:   make(map[string]string),
		rooms:    make(map[string]domain.Room),
		members:  make(map[string]map[string]domain.RoomMember),
		messages: make(map[string][]domain.Message),
		byID:     make(map[string]*msgRef),
	}
}

// --- UserRepository ---

func (s *Store) FindByPhone(_ context.Context, phone string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.phones[phone]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *Store) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (s *Store) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existingID, ok := s.phones[u.Phone]; ok {
		existing := s.users[existingID]
		return &existing, nil
	}
	stored := *u
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.users[stored.ID] = stored
	s.phones[stored.Phone] = stored.ID
	return &stored, nil
}

func (s *Store) UpdateUsername(_ context.Context, id, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Username = username
	s.users[id] = u
	return nil
}

// --- RoomRepository ---

func (s *Store) RoomByID(_ context.Context, id string) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return &r, nil
}

func (s *Store) RoomByOwner(_ context.Context, ownerID string) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		oldest *domain.Room
	)
	for id := range s.rooms {
		r := s.rooms[id]
		if r.OwnerID != ownerID {
			continue
		}
		if oldest == nil || r.CreatedAt.Before(oldest.CreatedAt) {
			copied := r
			oldest = &copied
		}
	}
	if oldest == nil {
		return nil, domain.ErrRoomNotFound
	}
	return oldest, nil
}

func (s *Store) CreateRoom(_ context.Context, r *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[r.ID]; ok {
		return domain.ErrRoomExists
	}
	if _, ok := s.users[r.OwnerID]; !ok {
		return domain.ErrForeignKey
	}
	stored := *r
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.rooms[r.ID] = stored
	r.CreatedAt = stored.CreatedAt
	return nil
}

func (s *Store) DeleteRoom(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return domain.ErrRoomNotFound
	}
	delete(s.rooms, id)
	delete(s.members, id)
	return nil
}

// --- MemberRepository ---

func (s *Store) UpsertMember(_ context.Context, roomID, userID string) (*domain.RoomMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[roomID]; !ok {
		return nil, domain.ErrForeignKey
	}
	u, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrForeignKey
	}
	room, ok := s.members[roomID]
	if !ok {
		room = make(map[string]domain.RoomMember)
		s.members[roomID] = room
	}
	if m, ok := room[userID]; ok {
		return &m, nil
	}
	m := domain.RoomMember{
		RoomID:   roomID,
		UserID:   userID,
		Username: u.Username,
		Phone:    u.Phone,
		JoinedAt: time.Now(),
	}
	room[userID] = m
	return &m, nil
}

func (s *Store) RemoveMember(_ context.Context, roomID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok := s.members[roomID]; ok {
		delete(room, userID)
	}
	return nil
}

func (s *Store) FindMember(_ context.Context, roomID, userID string) (*domain.RoomMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if room, ok := s.members[roomID]; ok {
		if m, ok := room[userID]; ok {
			return &m, nil
		}
	}
	return nil, domain.ErrNotInRoom
}

func (s *Store) ListMembers(_ context.Context, roomID string) ([]domain.RoomMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room := s.members[roomID]
	members := make([]domain.RoomMember, 0, len(room))
	for _, m := range room {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})
	if len(members) == 0 {
		return nil, nil
	}
	return members, nil
}

// --- MessageRepository ---

func (s *Store) InsertMessage(_ context.Context, m *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[m.RoomID]; !ok {
		return domain.ErrForeignKey
	}
	sender, ok := s.users[m.SenderID]
	if !ok {
		return domain.ErrForeignKey
	}
	s.seq++
	m.Seq = s.seq
	if m.SenderName == "" {
		m.SenderName = sender.Username
	}
	s.messages[m.RoomID] = append(s.messages[m.RoomID], *m)
	s.byID[m.ID] = &msgRef{roomID: m.RoomID, index: len(s.messages[m.RoomID]) - 1}
	return nil
}

func (s *Store) ListMessages(_ context.Context, roomID string, limit int) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.messages[roomID]
	ordered := make([]domain.Message, len(all))
	copy(ordered, all)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Timestamp.Equal(ordered[j].Timestamp) {
			return ordered[i].Seq < ordered[j].Seq
		}
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})
	if limit > 0 && len(ordered) > limit {
		ordered = ordered[len(ordered)-limit:]
	}
	if len(ordered) == 0 {
		return nil, nil
	}
	return ordered, nil
}

func (s *Store) LastMessage(ctx context.Context, roomID string) (*domain.Message, error) {
	ordered, err := s.ListMessages(ctx, roomID, 1)
	if err != nil {
		return nil, err
	}
	if len(ordered) == 0 {
		return nil, domain.ErrMessageNotFound
	}
	return &ordered[0], nil
}

func (s *Store) MarkMessageRead(_ context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, ok := s.byID[messageID]
	if !ok {
		return domain.ErrMessageNotFound
	}
	s.messages[ref.roomID][ref.index].ReadReceipt = true
	return nil
}

func (s *Store) MarkRoomMessagesRead(_ context.Context, roomID, excludingUserID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var changed int64
	msgs := s.messages[roomID]
	for i := range msgs {
		if msgs[i].SenderID == excludingUserID || msgs[i].ReadReceipt {
			continue
		}
		msgs[i].ReadReceipt = true
		changed++
	}
	return changed, nil
}

func (s *Store) DeleteMessage(_ context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, ok := s.byID[messageID]
	if !ok {
		return domain.ErrMessageNotFound
	}
	msgs := s.messages[ref.roomID]
	s.messages[ref.roomID] = append(msgs[:ref.index], msgs[ref.index+1:]...)
	delete(s.byID, messageID)
	for i := ref.index; i < len(s.messages[ref.roomID]); i++ {
		s.byID[s.messages[ref.roomID][i].ID].index = i
	}
	return nil
}

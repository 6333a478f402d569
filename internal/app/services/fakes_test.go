package services

import (
	"context"
	"mime/multipart"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/campusconnect/internal/app/auth"
	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/app/repositories"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
)

// memState is an in-memory stand-in for the database shared by the fake stores
type memState struct {
	mu     sync.Mutex
	nextID int64
	clock  time.Time

	users        map[int64]*models.User
	connections  map[int64]*models.Connection
	messages     []*models.Message
	workshops    map[int64]*models.Workshop
	participants map[int64][]*models.WorkshopParticipant
	wmessages    []*models.WorkshopMessage
	badges       []*models.Badge
	userBadges   []*models.UserBadge
	posts        map[int64]*models.Post
	likes        map[[2]int64]bool
	comments     []*models.Comment
	shares       map[int64]int
}

func newMemState() *memState {
	return &memState{
		clock:        time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		users:        map[int64]*models.User{},
		connections:  map[int64]*models.Connection{},
		workshops:    map[int64]*models.Workshop{},
		participants: map[int64][]*models.WorkshopParticipant{},
		badges:       []*models.Badge{{ID: 1, Name: models.WorkshopAttendeeBadge}, {ID: 2, Name: "Connector"}},
		posts:        map[int64]*models.Post{},
		likes:        map[[2]int64]bool{},
		shares:       map[int64]int{},
		nextID:       100,
	}
}

// id and tick must be called with mu held
func (m *memState) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memState) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memState) summary(userID int64) models.UserSummary {
	if u, ok := m.users[userID]; ok {
		return u.Summary()
	}
	return models.UserSummary{ID: userID}
}

func (m *memState) addUser(name string, verified bool) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{ID: m.id(), Name: name, Email: strings.ToLower(name) + "@college.edu", IsVerified: verified, CreatedAt: m.tick()}
	m.users[u.ID] = u
	return u
}

func (m *memState) between(a, b int64) *models.Connection {
	for _, c := range m.connections {
		if (c.RequesterID == a && c.ReceiverID == b) || (c.RequesterID == b && c.ReceiverID == a) {
			return c
		}
	}
	return nil
}

func (m *memState) connected(a, b int64) bool {
	c := m.between(a, b)
	return c != nil && c.Status == models.ConnectionAccepted
}

// stores returns fakes for every store over one state
func (m *memState) stores() (*memUsers, *memConnections, *memMessages, *memWorkshops, *memBadges, *memPosts) {
	return &memUsers{m}, &memConnections{m}, &memMessages{m}, &memWorkshops{m}, &memBadges{m}, &memPosts{m}
}

type memUsers struct{ *memState }

func (s *memUsers) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	user.ID = s.id()
	user.CreatedAt = s.tick()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *memUsers) GetByVerificationToken(_ context.Context, token string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.VerificationToken != nil && *u.VerificationToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *memUsers) MarkVerified(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.IsVerified = true
	u.VerificationToken = nil
	return nil
}

func (s *memUsers) UpdateProfile(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Name, u.Branch, u.Year, u.Bio, u.ProfileCompleted = user.Name, user.Branch, user.Year, user.Bio, user.ProfileCompleted
	return nil
}

func (s *memUsers) UpdateProfilePhoto(_ context.Context, userID int64, path string) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	previous := u.ProfilePhoto
	u.ProfilePhoto = &path
	return previous, nil
}

func (s *memUsers) Search(_ context.Context, term string, excludeID int64, limit uint64) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	term = strings.ToLower(term)
	out := []*models.User{}
	for _, u := range s.users {
		if u.ID == excludeID || !u.IsVerified {
			continue
		}
		if strings.Contains(strings.ToLower(u.Name), term) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if uint64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memUsers) SetPresence(_ context.Context, userID int64, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	now := s.tick()
	u.IsOnline, u.LastSeen = online, &now
	return nil
}

func (s *memUsers) GetPresence(_ context.Context, userID int64) (*models.Presence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &models.Presence{UserID: u.ID, IsOnline: u.IsOnline, LastSeen: u.LastSeen}, nil
}

func (s *memUsers) ListConnectionPresence(_ context.Context, userID int64) ([]*models.Presence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Presence{}
	for _, c := range s.connections {
		if c.Status == models.ConnectionAccepted && c.Involves(userID) {
			u := s.users[c.Counterpart(userID)]
			out = append(out, &models.Presence{UserID: u.ID, IsOnline: u.IsOnline, LastSeen: u.LastSeen})
		}
	}
	return out, nil
}

type memConnections struct{ *memState }

func (s *memConnections) Create(_ context.Context, requesterID, receiverID int64) (*models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.between(requesterID, receiverID) != nil {
		return nil, repositories.ErrDuplicate
	}
	c := &models.Connection{ID: s.id(), RequesterID: requesterID, ReceiverID: receiverID, Status: models.ConnectionPending, CreatedAt: s.tick()}
	s.connections[c.ID] = c
	cp := *c
	return &cp, nil
}

func (s *memConnections) GetByID(_ context.Context, id int64) (*models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.connections[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memConnections) FindBetween(_ context.Context, a, b int64) (*models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.between(a, b)
	if c == nil {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memConnections) Accept(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.connections[id]
	if !ok || c.Status != models.ConnectionPending {
		return false, nil
	}
	c.Status = models.ConnectionAccepted
	return true, nil
}

func (s *memConnections) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.connections[id]; !ok {
		return false, nil
	}
	delete(s.connections, id)
	return true, nil
}

func (s *memConnections) AreConnected(_ context.Context, a, b int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected(a, b), nil
}

func (s *memConnections) CountAccepted(_ context.Context, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.connections {
		if c.Status == models.ConnectionAccepted && c.Involves(userID) {
			n++
		}
	}
	return n, nil
}

func (s *memConnections) list(userID int64, keep func(*models.Connection) bool) []*models.ConnectionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.ConnectionEntry{}
	for _, c := range s.connections {
		if keep(c) {
			out = append(out, &models.ConnectionEntry{Connection: *c, User: s.summary(c.Counterpart(userID))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *memConnections) ListAccepted(_ context.Context, userID int64) ([]*models.ConnectionEntry, error) {
	return s.list(userID, func(c *models.Connection) bool {
		return c.Status == models.ConnectionAccepted && c.Involves(userID)
	}), nil
}

func (s *memConnections) ListIncoming(_ context.Context, userID int64) ([]*models.ConnectionEntry, error) {
	return s.list(userID, func(c *models.Connection) bool {
		return c.Status == models.ConnectionPending && c.ReceiverID == userID
	}), nil
}

func (s *memConnections) ListOutgoing(_ context.Context, userID int64) ([]*models.ConnectionEntry, error) {
	return s.list(userID, func(c *models.Connection) bool {
		return c.Status == models.ConnectionPending && c.RequesterID == userID
	}), nil
}

type memMessages struct{ *memState }

func (s *memMessages) Create(_ context.Context, message *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	message.ID = s.id()
	message.CreatedAt = s.tick()
	cp := *message
	s.messages = append(s.messages, &cp)
	return nil
}

func (s *memMessages) ListThreads(_ context.Context, userID int64) ([]*models.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	threads := []*models.Thread{}
	for _, c := range s.connections {
		if c.Status != models.ConnectionAccepted || !c.Involves(userID) {
			continue
		}
		other := c.Counterpart(userID)
		t := &models.Thread{User: s.summary(other)}
		for _, m := range s.messages {
			if (m.SenderID == userID && m.ReceiverID == other) || (m.SenderID == other && m.ReceiverID == userID) {
				cp := *m
				t.LastMessage = &cp
				if m.ReceiverID == userID && !m.IsRead {
					t.UnreadCount++
				}
			}
		}
		threads = append(threads, t)
	}
	return threads, nil
}

func (s *memMessages) Conversation(_ context.Context, a, b int64) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Message{}
	for _, m := range s.messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memMessages) MarkRead(_ context.Context, readerID, senderID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, m := range s.messages {
		if m.SenderID == senderID && m.ReceiverID == readerID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

func (s *memMessages) CountUnreadFromConnections(_ context.Context, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.messages {
		if m.ReceiverID == userID && !m.IsRead && s.connected(userID, m.SenderID) {
			n++
		}
	}
	return n, nil
}

type memWorkshops struct{ *memState }

func (s *memWorkshops) Create(_ context.Context, w *models.Workshop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.ID = s.id()
	w.Status = models.WorkshopScheduled
	w.CreatedAt = s.tick()
	cp := *w
	s.workshops[w.ID] = &cp
	return nil
}

func (s *memWorkshops) GetByID(_ context.Context, id int64) (*models.Workshop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workshops[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *w
	cp.Instructor = s.summary(w.InstructorID)
	cp.ParticipantCount = len(s.participants[id])
	return &cp, nil
}

func (s *memWorkshops) List(_ context.Context, status *models.WorkshopStatus) ([]*models.Workshop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Workshop{}
	for _, w := range s.workshops {
		if status == nil || w.Status == *status {
			cp := *w
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (s *memWorkshops) ListParticipants(_ context.Context, workshopID int64) ([]*models.WorkshopParticipant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.WorkshopParticipant{}
	for _, p := range s.participants[workshopID] {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memWorkshops) participant(workshopID, userID int64) *models.WorkshopParticipant {
	for _, p := range s.participants[workshopID] {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func (s *memWorkshops) IsParticipant(_ context.Context, workshopID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.participant(workshopID, userID) != nil, nil
}

func (s *memWorkshops) Join(_ context.Context, workshopID, userID int64) (*models.WorkshopParticipant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workshops[workshopID]
	switch {
	case !ok:
		return nil, repositories.ErrNotFound
	case w.Status == models.WorkshopCompleted:
		return nil, repositories.ErrWorkshopClosed
	case s.participant(workshopID, userID) != nil:
		return nil, repositories.ErrAlreadyJoined
	case len(s.participants[workshopID]) >= w.MaxParticipants:
		return nil, repositories.ErrWorkshopFull
	}
	p := &models.WorkshopParticipant{ID: s.id(), WorkshopID: workshopID, UserID: userID, JoinedAt: s.tick(), User: s.summary(userID)}
	s.participants[workshopID] = append(s.participants[workshopID], p)
	cp := *p
	return &cp, nil
}

func (s *memWorkshops) Leave(_ context.Context, workshopID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.participants[workshopID]
	for i, p := range list {
		if p.UserID == userID {
			s.participants[workshopID] = append(list[:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *memWorkshops) Transition(_ context.Context, workshopID int64, from, to models.WorkshopStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workshops[workshopID]
	if !ok || w.Status != from {
		return false, nil
	}
	w.Status = to
	return true, nil
}

func (s *memWorkshops) Complete(_ context.Context, workshopID int64, badgeName string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workshops[workshopID]
	if !ok || w.Status != models.WorkshopLive {
		return 0, repositories.ErrStaleState
	}
	w.Status = models.WorkshopCompleted

	var badge *models.Badge
	for _, b := range s.badges {
		if b.Name == badgeName {
			badge = b
		}
	}

	var awarded int64
	for _, p := range s.participants[workshopID] {
		p.Attended = true
		if badge == nil || s.holds(p.UserID, badge.ID, &workshopID) {
			continue
		}
		wid := workshopID
		s.userBadges = append(s.userBadges, &models.UserBadge{Badge: *badge, UserID: p.UserID, WorkshopID: &wid, AwardedAt: s.tick()})
		awarded++
	}
	return awarded, nil
}

func (s *memWorkshops) MarkAttended(_ context.Context, workshopID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workshops[workshopID]
	p := s.participant(workshopID, userID)
	if !ok || w.Status != models.WorkshopLive || p == nil {
		return false, nil
	}
	p.Attended = true
	return true, nil
}

func (s *memWorkshops) PostMessage(_ context.Context, workshopID, userID int64, content string, markAttendance bool) (*models.WorkshopMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workshops[workshopID]
	if !ok || w.Status != models.WorkshopLive {
		return nil, repositories.ErrWorkshopClosed
	}
	m := &models.WorkshopMessage{ID: s.id(), WorkshopID: workshopID, UserID: userID, Content: content, CreatedAt: s.tick(), User: s.summary(userID)}
	s.wmessages = append(s.wmessages, m)
	if markAttendance {
		if p := s.participant(workshopID, userID); p != nil {
			p.Attended = true
		}
	}
	cp := *m
	return &cp, nil
}

func (s *memWorkshops) ListMessages(_ context.Context, workshopID, sinceID int64, limit uint64) ([]*models.WorkshopMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.WorkshopMessage{}
	for _, m := range s.wmessages {
		if m.WorkshopID == workshopID && m.ID > sinceID {
			cp := *m
			out = append(out, &cp)
			if uint64(len(out)) == limit {
				break
			}
		}
	}
	return out, nil
}

type memBadges struct{ *memState }

// holds must be called with mu held
func (m *memState) holds(userID, badgeID int64, workshopID *int64) bool {
	for _, ub := range m.userBadges {
		if ub.UserID != userID || ub.ID != badgeID {
			continue
		}
		if (ub.WorkshopID == nil && workshopID == nil) ||
			(ub.WorkshopID != nil && workshopID != nil && *ub.WorkshopID == *workshopID) {
			return true
		}
	}
	return false
}

func (s *memBadges) List(context.Context) ([]*models.Badge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Badge(nil), s.badges...), nil
}

func (s *memBadges) GetByName(_ context.Context, name string) (*models.Badge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.badges {
		if b.Name == name {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *memBadges) ListForUser(_ context.Context, userID int64) ([]*models.UserBadge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.UserBadge{}
	for _, ub := range s.userBadges {
		if ub.UserID == userID {
			cp := *ub
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memBadges) Award(_ context.Context, userID, badgeID int64, workshopID *int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.holds(userID, badgeID, workshopID) {
		return false, nil
	}
	var badge models.Badge
	for _, b := range s.badges {
		if b.ID == badgeID {
			badge = *b
		}
	}
	s.userBadges = append(s.userBadges, &models.UserBadge{Badge: badge, UserID: userID, WorkshopID: workshopID, AwardedAt: s.tick()})
	return true, nil
}

func (s *memBadges) EnsureCatalog(_ context.Context, badges []models.Badge) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var added int64
	for _, b := range badges {
		exists := false
		for _, have := range s.badges {
			if have.Name == b.Name {
				exists = true
			}
		}
		if !exists {
			b := b
			b.ID = s.id()
			s.badges = append(s.badges, &b)
			added++
		}
	}
	return added, nil
}

type memPosts struct{ *memState }

func (s *memPosts) view(p *models.Post, viewerID int64) *models.Post {
	cp := *p
	cp.Author = s.summary(p.UserID)
	cp.ShareCount = s.shares[p.ID]
	cp.LikeCount, cp.CommentCount = 0, 0
	for k := range s.likes {
		if k[0] == p.ID {
			cp.LikeCount++
		}
	}
	for _, c := range s.comments {
		if c.PostID == p.ID {
			cp.CommentCount++
		}
	}
	cp.LikedByViewer = s.likes[[2]int64{p.ID, viewerID}]
	if p.OriginalPostID != nil {
		if root, ok := s.posts[*p.OriginalPostID]; ok {
			r := *root
			r.Author = s.summary(root.UserID)
			cp.OriginalPost = &r
		}
	}
	return &cp
}

func (s *memPosts) Create(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post.ID = s.id()
	post.CreatedAt = s.tick()
	cp := *post
	s.posts[post.ID] = &cp
	return nil
}

func (s *memPosts) GetByID(_ context.Context, id, viewerID int64) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return s.view(p, viewerID), nil
}

func (s *memPosts) List(_ context.Context, filter models.PostFilter) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Post{}
	for _, p := range s.posts {
		if filter.AuthorID != nil && p.UserID != *filter.AuthorID {
			continue
		}
		if filter.Hashtag != "" && !strings.Contains(strings.ToLower(p.Content), "#"+filter.Hashtag) {
			continue
		}
		out = append(out, s.view(p, filter.ViewerID))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Offset >= uint64(len(out)) {
		return []*models.Post{}, nil
	}
	out = out[filter.Offset:]
	if uint64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *memPosts) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *memPosts) CountByUser(_ context.Context, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.posts {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *memPosts) Like(_ context.Context, postID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		return repositories.ErrNotFound
	}
	key := [2]int64{postID, userID}
	if s.likes[key] {
		return repositories.ErrDuplicate
	}
	s.likes[key] = true
	return nil
}

func (s *memPosts) Unlike(_ context.Context, postID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]int64{postID, userID}
	if !s.likes[key] {
		return false, nil
	}
	delete(s.likes, key)
	return true, nil
}

func (s *memPosts) CountLikes(_ context.Context, postID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.likes {
		if k[0] == postID {
			n++
		}
	}
	return n, nil
}

func (s *memPosts) AddComment(_ context.Context, comment *models.Comment) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[comment.PostID]; !ok {
		return 0, repositories.ErrNotFound
	}
	comment.ID = s.id()
	comment.CreatedAt = s.tick()
	comment.Author = s.summary(comment.UserID)
	cp := *comment
	s.comments = append(s.comments, &cp)
	n := 0
	for _, c := range s.comments {
		if c.PostID == comment.PostID {
			n++
		}
	}
	return n, nil
}

func (s *memPosts) ListComments(_ context.Context, postID int64) ([]*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Comment{}
	for _, c := range s.comments {
		if c.PostID == postID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memPosts) Share(_ context.Context, rootID, userID int64, content string) (int64, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[rootID]; !ok {
		return 0, 0, repositories.ErrNotFound
	}
	s.shares[rootID]++
	root := rootID
	p := &models.Post{ID: s.id(), UserID: userID, Content: content, OriginalPostID: &root, CreatedAt: s.tick()}
	s.posts[p.ID] = p
	return p.ID, s.shares[rootID], nil
}

// fakeStorage records saved and deleted files
type fakeStorage struct {
	mu      sync.Mutex
	saved   []string
	deleted []string
	err     error
}

func (f *fakeStorage) SaveImage(fh *multipart.FileHeader, subDir string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	path := "/uploads/" + subDir + "/" + fh.Filename
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeStorage) DeleteFile(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, path)
	return nil
}

// fakeMailer records verification tokens
type fakeMailer struct {
	tokens   []string
	welcomed []string
}

func (f *fakeMailer) SendVerificationEmail(_, _, token string) error {
	f.tokens = append(f.tokens, token)
	return nil
}

func (f *fakeMailer) SendWelcomeEmail(to, _ string) error {
	f.welcomed = append(f.welcomed, to)
	return nil
}

type publishedEvent struct {
	workshopID int64
	eventType  string
	payload    interface{}
}

// fakePublisher records pushed workshop events
type fakePublisher struct {
	mu           sync.Mutex
	events       []publishedEvent
	disconnected [][2]int64
}

func (f *fakePublisher) Disconnect(workshopID, userID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnected = append(f.disconnected, [2]int64{workshopID, userID})
}

func (f *fakePublisher) Publish(workshopID int64, eventType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{workshopID, eventType, payload})
}

func (f *fakePublisher) count(eventType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.eventType == eventType {
			n++
		}
	}
	return n
}

// testEnv wires every service over one in-memory state
type testEnv struct {
	state     *memState
	publisher *fakePublisher
	storage   *fakeStorage

	connections ConnectionService
	messages    MessageService
	workshops   WorkshopService
	chat        WorkshopChatService
	badges      BadgeService
	users       UserService
	posts       PostService
	presence    PresenceService
}

func newTestEnv() *testEnv {
	state := newMemState()
	users, conns, msgs, workshops, badges, posts := state.stores()
	publisher := &fakePublisher{}
	storage := &fakeStorage{}
	authz := appauth.NewAuthorizationService(workshops)
	log := zerolog.Nop()

	return &testEnv{
		state:       state,
		publisher:   publisher,
		storage:     storage,
		connections: NewConnectionService(conns, users, log),
		messages:    NewMessageService(msgs, conns, users, log),
		workshops:   NewWorkshopService(workshops, authz, publisher, log),
		chat:        NewWorkshopChatService(workshops, authz, publisher, log),
		badges:      NewBadgeService(badges, users, log),
		users:       NewUserService(users, conns, posts, storage, log),
		posts:       NewPostService(posts, storage, log),
		presence:    NewPresenceService(users, log),
	}
}

// connect makes a and b accepted connections
func (e *testEnv) connect(t testingT, a, b int64) *models.Connection {
	conn, err := e.connections.Request(context.Background(), a, b)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := e.connections.Accept(context.Background(), conn.ID, b); err != nil {
		t.Fatalf("accept: %v", err)
	}
	return conn
}

// newWorkshop creates a workshop run by instructorID with the given capacity
func (e *testEnv) newWorkshop(t testingT, instructorID int64, capacity int) *models.Workshop {
	at := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	w, err := e.workshops.Create(context.Background(), instructorID, models.WorkshopDraft{
		Title:           "Intro to Go",
		ScheduledAt:     &at,
		MaxParticipants: capacity,
	})
	if err != nil {
		t.Fatalf("create workshop: %v", err)
	}
	return w
}

type testingT interface {
	Fatalf(format string, args ...interface{})
}

package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"vexa/models"
)

// memStore is an in-memory stand-in for every store interface the services
// consume. Tests share one instance so membership and invitation flows can be
// exercised end to end without a database.
type memStore struct {
	mu sync.Mutex

	users         map[uint]*models.User
	projects      map[uint]*models.Project
	invitations   map[string]*models.Invitation
	mirrors       map[MemberPair]bool
	works         map[uint][]models.Work
	notifications []models.Notification

	nextProjectID uint
	nextUserID    uint

	// Error injection. A non-nil value makes the named operation fail.
	addUserProjectErr    error
	removeUserProjectErr error

	// claimLoses forces Claim to report a lost race while leaving the stored
	// row untouched.
	claimLoses bool
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[uint]*models.User),
		projects:    make(map[uint]*models.Project),
		invitations: make(map[string]*models.Invitation),
		mirrors:     make(map[MemberPair]bool),
		works:       make(map[uint][]models.Work),
	}
}

func (m *memStore) addUser(name string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextUserID++
	u := &models.User{Name: name, Email: name + "@example.com"}
	u.ID = m.nextUserID
	m.users[u.ID] = u
	return u
}

// UserStore

func (m *memStore) FindUser(ctx context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id], nil
}

func (m *memStore) AddUserProject(ctx context.Context, userID, projectID uint) error {
	if m.addUserProjectErr != nil {
		return m.addUserProjectErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mirrors[MemberPair{UserID: userID, ProjectID: projectID}] = true
	return nil
}

func (m *memStore) RemoveUserProject(ctx context.Context, userID, projectID uint) error {
	if m.removeUserProjectErr != nil {
		return m.removeUserProjectErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.mirrors, MemberPair{UserID: userID, ProjectID: projectID})
	return nil
}

func (m *memStore) ListUserProjects(ctx context.Context, userID uint) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uint
	for pair := range m.mirrors {
		if pair.UserID == userID {
			ids = append(ids, pair.ProjectID)
		}
	}
	return ids, nil
}

func (m *memStore) AddNotification(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, *n)
	return nil
}

// ProjectStore

// snapshotLocked copies a project with its roster so callers never read a
// slice another goroutine is mutating.
func (m *memStore) snapshotLocked(p *models.Project) *models.Project {
	copied := *p
	copied.Members = append([]models.ProjectMember(nil), p.Members...)
	return &copied
}

func (m *memStore) FindProject(ctx context.Context, id uint) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.projects[id]
	if p == nil {
		return nil, nil
	}
	return m.snapshotLocked(p), nil
}

func (m *memStore) FindProjectWithUsers(ctx context.Context, id uint) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.projects[id]
	if p == nil {
		return nil, nil
	}
	snap := m.snapshotLocked(p)
	for i := range snap.Members {
		if u := m.users[snap.Members[i].UserID]; u != nil {
			snap.Members[i].User = *u
		}
	}
	return snap, nil
}

func (m *memStore) CreateProject(ctx context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextProjectID++
	p.ID = m.nextProjectID
	for i := range p.Members {
		p.Members[i].ProjectID = p.ID
	}
	m.projects[p.ID] = p
	return nil
}

func (m *memStore) DeleteProject(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.projects, id)
	delete(m.works, id)
	for code, inv := range m.invitations {
		if inv.ProjectID == id {
			delete(m.invitations, code)
		}
	}
	return nil
}

func (m *memStore) UpdateProjectFields(ctx context.Context, id uint, patch map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.projects[id]
	if p == nil {
		return errors.New("project not found")
	}
	if v, ok := patch["title"]; ok {
		p.Title = v.(string)
	}
	if v, ok := patch["description"]; ok {
		p.Description = v.(string)
	}
	if v, ok := patch["tags"]; ok {
		p.Tags = v.(string)
	}
	if v, ok := patch["img"]; ok {
		p.Img = v.(string)
	}
	return nil
}

func (m *memStore) AddMember(ctx context.Context, member *models.ProjectMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.projects[member.ProjectID]
	if p == nil {
		return errors.New("project not found")
	}
	for _, existing := range p.Members {
		if existing.UserID == member.UserID {
			return errors.New("duplicate member")
		}
	}
	p.Members = append(p.Members, *member)
	return nil
}

func (m *memStore) UpdateMemberAccess(ctx context.Context, projectID, userID uint, access models.AccessLevel, role string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.projects[projectID]
	if p == nil {
		return 0, nil
	}
	for i := range p.Members {
		if p.Members[i].UserID == userID {
			p.Members[i].Access = access
			p.Members[i].Role = role
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memStore) RemoveMember(ctx context.Context, projectID, userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.projects[projectID]
	if p == nil {
		return 0, nil
	}
	for i := range p.Members {
		if p.Members[i].UserID == userID {
			p.Members = append(p.Members[:i], p.Members[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memStore) AddWork(ctx context.Context, w *models.Work) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.works[w.ProjectID] = append(m.works[w.ProjectID], *w)
	return nil
}

func (m *memStore) ListWorks(ctx context.Context, projectID uint) ([]models.Work, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.works[projectID], nil
}

// InvitationStore

func (m *memStore) Create(ctx context.Context, inv *models.Invitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.invitations[inv.Code]; exists {
		return errors.New("duplicate code")
	}
	stored := *inv
	m.invitations[inv.Code] = &stored
	return nil
}

func (m *memStore) FindByCode(ctx context.Context, code string) (*models.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv := m.invitations[code]
	if inv == nil {
		return nil, nil
	}
	copied := *inv
	return &copied, nil
}

func (m *memStore) Claim(ctx context.Context, code string, at time.Time) (bool, error) {
	if m.claimLoses {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	inv := m.invitations[code]
	if inv == nil || inv.Status != models.InvitationIssued {
		return false, nil
	}
	inv.Status = models.InvitationRedeemed
	inv.RedeemedAt = &at
	return true, nil
}

func (m *memStore) Revoke(ctx context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv := m.invitations[code]
	if inv == nil || inv.Status != models.InvitationIssued {
		return false, nil
	}
	inv.Status = models.InvitationRevoked
	return true, nil
}

func (m *memStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for code, inv := range m.invitations {
		if inv.ExpiresAt.Before(before) {
			delete(m.invitations, code)
			n++
		}
	}
	return n, nil
}

// MirrorStore

func (m *memStore) ListMemberPairs(ctx context.Context) ([]MemberPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pairs []MemberPair
	for _, p := range m.projects {
		for _, member := range p.Members {
			pairs = append(pairs, MemberPair{UserID: member.UserID, ProjectID: p.ID})
		}
	}
	return pairs, nil
}

func (m *memStore) ListUserProjectPairs(ctx context.Context) ([]MemberPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pairs []MemberPair
	for pair := range m.mirrors {
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// fakeMailer records deliveries and can be made to fail.
type fakeMailer struct {
	sent []string // recipient addresses
	err  error
}

func (f *fakeMailer) SendInvitationEmail(to, name, issuerName, projectTitle, link string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Interface conformance for the shared fake.
var (
	_ UserStore       = (*memStore)(nil)
	_ ProjectStore    = (*memStore)(nil)
	_ InvitationStore = (*memStore)(nil)
	_ MirrorStore     = (*memStore)(nil)
	_ InviteMailer    = (*fakeMailer)(nil)
)

package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/core/port"
	"github.com/campusio/intl-office/internal/repository"
)

// Map-backed mocks shared across the usecase tests.

type visaRepoMock struct {
	visas       map[string]domain.VisaExtension
	history     []domain.VisaExtensionHistory
	expiring    []domain.VisaExtension
	reportRows  []port.VisaReportRow
	createErr   error
	updateErr   error
	statusErr   error
	deleteErr   error
	lastFilter  port.VisaFilter
	statusCalls int
}

func (m *visaRepoMock) Create(_ context.Context, visa domain.VisaExtension) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.visas == nil {
		m.visas = make(map[string]domain.VisaExtension)
	}
	m.visas[visa.ID] = visa
	return nil
}

func (m *visaRepoMock) GetByID(_ context.Context, id string) (*domain.VisaExtension, error) {
	if visa, ok := m.visas[id]; ok {
		return &visa, nil
	}
	return nil, repository.ErrNotFound
}

func (m *visaRepoMock) List(_ context.Context, filter port.VisaFilter) ([]domain.VisaExtension, error) {
	m.lastFilter = filter
	out := make([]domain.VisaExtension, 0, len(m.visas))
	for _, visa := range m.visas {
		if filter.OwnerID != "" && visa.OwnerID != filter.OwnerID {
			continue
		}
		out = append(out, visa)
	}
	return out, nil
}

func (m *visaRepoMock) Count(_ context.Context, filter port.VisaFilter) (int, error) {
	items, _ := m.List(context.Background(), filter)
	return len(items), nil
}

func (m *visaRepoMock) Update(_ context.Context, visa domain.VisaExtension) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.visas[visa.ID]; !ok {
		return repository.ErrNotFound
	}
	m.visas[visa.ID] = visa
	return nil
}

func (m *visaRepoMock) UpdateStatus(_ context.Context, visa domain.VisaExtension, history domain.VisaExtensionHistory) error {
	if m.statusErr != nil {
		return m.statusErr
	}
	if _, ok := m.visas[visa.ID]; !ok {
		return repository.ErrNotFound
	}
	m.visas[visa.ID] = visa
	m.history = append(m.history, history)
	m.statusCalls++
	return nil
}

func (m *visaRepoMock) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.visas[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.visas, id)
	return nil
}

func (m *visaRepoMock) ListHistory(_ context.Context, visaID string) ([]domain.VisaExtensionHistory, error) {
	var out []domain.VisaExtensionHistory
	for _, entry := range m.history {
		if entry.VisaExtensionID == visaID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (m *visaRepoMock) ListExpiring(_ context.Context, _ time.Time) ([]domain.VisaExtension, error) {
	return m.expiring, nil
}

func (m *visaRepoMock) ListForReport(_ context.Context, _ port.VisaFilter) ([]port.VisaReportRow, error) {
	return m.reportRows, nil
}

type mouRepoMock struct {
	mous       map[string]domain.MOU
	history    []domain.MOUHistory
	reportRows []port.MOUReportRow
	statusErr  error
	lastFilter port.MOUFilter
}

func (m *mouRepoMock) Create(_ context.Context, mou domain.MOU) error {
	if m.mous == nil {
		m.mous = make(map[string]domain.MOU)
	}
	m.mous[mou.ID] = mou
	return nil
}

func (m *mouRepoMock) GetByID(_ context.Context, id string) (*domain.MOU, error) {
	if mou, ok := m.mous[id]; ok {
		return &mou, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mouRepoMock) List(_ context.Context, filter port.MOUFilter) ([]domain.MOU, error) {
	m.lastFilter = filter
	out := make([]domain.MOU, 0, len(m.mous))
	for _, mou := range m.mous {
		if filter.OwnerID != "" && mou.OwnerID != filter.OwnerID {
			continue
		}
		out = append(out, mou)
	}
	return out, nil
}

func (m *mouRepoMock) Count(_ context.Context, filter port.MOUFilter) (int, error) {
	items, _ := m.List(context.Background(), filter)
	return len(items), nil
}

func (m *mouRepoMock) Update(_ context.Context, mou domain.MOU) error {
	if _, ok := m.mous[mou.ID]; !ok {
		return repository.ErrNotFound
	}
	m.mous[mou.ID] = mou
	return nil
}

func (m *mouRepoMock) UpdateStatus(_ context.Context, mou domain.MOU, history domain.MOUHistory) error {
	if m.statusErr != nil {
		return m.statusErr
	}
	if _, ok := m.mous[mou.ID]; !ok {
		return repository.ErrNotFound
	}
	m.mous[mou.ID] = mou
	m.history = append(m.history, history)
	return nil
}

func (m *mouRepoMock) Delete(_ context.Context, id string) error {
	if _, ok := m.mous[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.mous, id)
	return nil
}

func (m *mouRepoMock) ListHistory(_ context.Context, mouID string) ([]domain.MOUHistory, error) {
	var out []domain.MOUHistory
	for _, entry := range m.history {
		if entry.MOUID == mouID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (m *mouRepoMock) ListForReport(_ context.Context, _ port.MOUFilter) ([]port.MOUReportRow, error) {
	return m.reportRows, nil
}

type documentRepoMock struct {
	docs          map[string]domain.Document
	requiredCount int
	requiredErr   error
}

func (m *documentRepoMock) Create(_ context.Context, doc domain.Document) error {
	if m.docs == nil {
		m.docs = make(map[string]domain.Document)
	}
	m.docs[doc.ID] = doc
	return nil
}

func (m *documentRepoMock) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if doc, ok := m.docs[id]; ok {
		return &doc, nil
	}
	return nil, repository.ErrNotFound
}

func (m *documentRepoMock) ListByParent(_ context.Context, parent domain.DocumentParent, parentID string) ([]domain.Document, error) {
	var out []domain.Document
	for _, doc := range m.docs {
		if doc.Parent == parent && doc.ParentID == parentID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *documentRepoMock) CountRequired(_ context.Context, _ domain.DocumentParent, _ string) (int, error) {
	if m.requiredErr != nil {
		return 0, m.requiredErr
	}
	return m.requiredCount, nil
}

func (m *documentRepoMock) SetVerified(_ context.Context, id string, verified bool) error {
	doc, ok := m.docs[id]
	if !ok {
		return repository.ErrNotFound
	}
	doc.IsVerified = verified
	m.docs[id] = doc
	return nil
}

func (m *documentRepoMock) Delete(_ context.Context, id string) error {
	if _, ok := m.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

type userRepoMock struct {
	users     map[string]domain.User
	byEmail   map[string]string
	roles     map[string][]domain.Role
	createErr error
	updateErr error
}

func (m *userRepoMock) add(user domain.User) {
	if m.users == nil {
		m.users = make(map[string]domain.User)
		m.byEmail = make(map[string]string)
	}
	m.users[user.ID] = user
	m.byEmail[user.Email] = user.ID
}

func (m *userRepoMock) Create(_ context.Context, user domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, taken := m.byEmail[user.Email]; taken {
		return repository.ErrDuplicate
	}
	m.add(user)
	return nil
}

func (m *userRepoMock) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := m.users[id]; ok {
		return &user, nil
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if id, ok := m.byEmail[email]; ok {
		user := m.users[id]
		return &user, nil
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) List(_ context.Context, _ port.UserFilter) ([]domain.User, error) {
	out := make([]domain.User, 0, len(m.users))
	for _, user := range m.users {
		out = append(out, user)
	}
	return out, nil
}

func (m *userRepoMock) Count(_ context.Context, _ port.UserFilter) (int, error) {
	return len(m.users), nil
}

func (m *userRepoMock) Update(_ context.Context, user domain.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *userRepoMock) ListRoles(_ context.Context, userID string) ([]domain.Role, error) {
	return m.roles[userID], nil
}

func (m *userRepoMock) AssignRoles(_ context.Context, userID string, roles []domain.Role, _ string) error {
	if m.roles == nil {
		m.roles = make(map[string][]domain.Role)
	}
	m.roles[userID] = append(m.roles[userID], roles...)
	return nil
}

func (m *userRepoMock) RevokeRoles(_ context.Context, userID string, roles []domain.Role) error {
	var kept []domain.Role
	for _, have := range m.roles[userID] {
		if !domain.HasRole(roles, have) {
			kept = append(kept, have)
		}
	}
	m.roles[userID] = kept
	return nil
}

type notificationRepoMock struct {
	created []domain.Notification
	read    []string
}

func (m *notificationRepoMock) Create(_ context.Context, n domain.Notification) error {
	m.created = append(m.created, n)
	return nil
}

func (m *notificationRepoMock) ListByUser(_ context.Context, userID string, unreadOnly bool, _, _ int) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range m.created {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *notificationRepoMock) MarkRead(_ context.Context, id, userID string) error {
	for i, n := range m.created {
		if n.ID == id && n.UserID == userID {
			m.created[i].IsRead = true
			m.read = append(m.read, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

type eventPublisherMock struct {
	statusChanged []domain.StatusChangedEvent
	rolesAssigned []domain.RolesAssignedEvent
	rolesRevoked  []domain.RolesRevokedEvent
	userCreated   []domain.UserCreatedEvent
	publishErr    error
}

func (m *eventPublisherMock) PublishStatusChanged(_ context.Context, event domain.StatusChangedEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.statusChanged = append(m.statusChanged, event)
	return nil
}

func (m *eventPublisherMock) PublishRolesAssigned(_ context.Context, event domain.RolesAssignedEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.rolesAssigned = append(m.rolesAssigned, event)
	return nil
}

func (m *eventPublisherMock) PublishRolesRevoked(_ context.Context, event domain.RolesRevokedEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.rolesRevoked = append(m.rolesRevoked, event)
	return nil
}

func (m *eventPublisherMock) PublishUserCreated(_ context.Context, event domain.UserCreatedEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.userCreated = append(m.userCreated, event)
	return nil
}

type rateLimitStoreMock struct {
	count    int
	countErr error
	recorded []string
}

func (m *rateLimitStoreMock) TrimWindow(_ context.Context, _ string, _ time.Duration, _ time.Time) error {
	return nil
}

func (m *rateLimitStoreMock) CountAttempts(_ context.Context, _ string, _ time.Duration, _ time.Time) (int, error) {
	return m.count, m.countErr
}

func (m *rateLimitStoreMock) RecordAttempt(_ context.Context, identifier string, _ time.Time) error {
	m.recorded = append(m.recorded, identifier)
	m.count++
	return nil
}

func (m *rateLimitStoreMock) OldestAttempt(_ context.Context, _ string, _ time.Duration, _ time.Time) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

type fileStoreMock struct {
	saved   map[string][]byte
	saveErr error
	removed []string
}

func (m *fileStoreMock) Save(_ context.Context, folder, ext string, r io.Reader) (string, int64, error) {
	if m.saveErr != nil {
		return "", 0, m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	path := fmt.Sprintf("%s/%d%s", folder, len(m.saved), ext)
	m.saved[path] = data
	return path, int64(len(data)), nil
}

func (m *fileStoreMock) Open(_ context.Context, storedPath string) (io.ReadCloser, error) {
	data, ok := m.saved[storedPath]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *fileStoreMock) Remove(_ context.Context, storedPath string) error {
	delete(m.saved, storedPath)
	m.removed = append(m.removed, storedPath)
	return nil
}

type mailerMock struct {
	sent []string
}

func (m *mailerMock) Send(_ context.Context, to, _, _ string) error {
	m.sent = append(m.sent, to)
	return nil
}

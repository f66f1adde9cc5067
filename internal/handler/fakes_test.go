package handler_test

// In-memory stand-ins for the MySQL repositories, the session store and
// the mailer, so handler behavior is exercised without infrastructure.

import (
	"context"
	"database/sql"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/user-auth-service/internal/model"
	"github.com/iliyamo/user-auth-service/internal/repository"
)

type fakeUserStore struct {
	mu     sync.Mutex
	nextID uint64
	users  map[string]*model.User // keyed by email
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (s *fakeUserStore) Create(_ context.Context, fullName, email, passwordHash string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	if _, ok := s.users[email]; ok {
		return 0, repository.ErrEmailExists
	}
	s.nextID++
	s.users[email] = &model.User{
		ID:           s.nextID,
		FullName:     fullName,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	return s.nextID, nil
}

// seed inserts a user directly, bypassing the registration flow.
func (s *fakeUserStore) seed(fullName, email, passwordHash, roleName string, active bool) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.users[email] = &model.User{
		ID:           s.nextID,
		FullName:     fullName,
		Email:        email,
		PasswordHash: passwordHash,
		RoleName:     roleName,
		IsActive:     active,
		CreatedAt:    time.Now().UTC(),
	}
	return s.nextID
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return *u, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return *u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (s *fakeUserStore) byID(id uint64) (*model.User, bool) {
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return nil, false
}

func (s *fakeUserStore) UpdateRole(_ context.Context, id uint64, roleID uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID(id); ok {
		v := roleID
		u.RoleID = &v
	}
	return nil
}

func (s *fakeUserStore) UpdateActive(_ context.Context, id uint64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID(id); ok {
		u.IsActive = active
	}
	return nil
}

func (s *fakeUserStore) UpdateLoggedIn(_ context.Context, id uint64, loggedIn bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID(id); ok {
		u.IsLoggedIn = loggedIn
	}
	return nil
}

func (s *fakeUserStore) UpdatePasswordHash(_ context.Context, email, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[strings.ToLower(strings.TrimSpace(email))]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (s *fakeUserStore) List(_ context.Context, viewerRole string) ([]model.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, viewerRole == repository.SuperAdminRole, nil
}

type fakeOTPStore struct {
	mu     sync.Mutex
	nextID uint64
	otps   []model.OTP
}

func newFakeOTPStore() *fakeOTPStore { return &fakeOTPStore{} }

func (s *fakeOTPStore) Insert(_ context.Context, otp model.OTP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	otp.ID = s.nextID
	otp.Email = strings.ToLower(strings.TrimSpace(otp.Email))
	otp.CreatedAt = time.Now().UTC()
	s.otps = append(s.otps, otp)
	return nil
}

func (s *fakeOTPStore) FindValid(_ context.Context, email, code, purpose string) (model.OTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	now := time.Now().UTC()
	for _, o := range s.otps {
		if o.Email == email && o.Code == code && o.Purpose == purpose && !o.Used && o.ExpiresAt.After(now) {
			return o, nil
		}
	}
	return model.OTP{}, repository.ErrOTPNotFound
}

func (s *fakeOTPStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, o := range s.otps {
		if o.ID == id {
			s.otps = append(s.otps[:i], s.otps[i+1:]...)
			return nil
		}
	}
	return repository.ErrOTPNotFound
}

func (s *fakeOTPStore) MarkUsed(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, o := range s.otps {
		if o.ID == id && !o.Used {
			s.otps[i].Used = true
			return nil
		}
	}
	return repository.ErrOTPNotFound
}

func (s *fakeOTPStore) DeleteByEmailPurpose(_ context.Context, email, purpose string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	kept := s.otps[:0]
	for _, o := range s.otps {
		if !(o.Email == email && o.Purpose == purpose) {
			kept = append(kept, o)
		}
	}
	s.otps = kept
	return nil
}

// expireAll backdates every stored code, simulating the passage of the
// OTP window.
func (s *fakeOTPStore) expireAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.otps {
		s.otps[i].ExpiresAt = time.Now().UTC().Add(-time.Minute)
	}
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

var codeRe = regexp.MustCompile(`[0-9]{6}`)

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

// lastCode extracts the six-digit code from the most recent mail.
func (m *fakeMailer) lastCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return codeRe.FindString(m.sent[len(m.sent)-1].Body)
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

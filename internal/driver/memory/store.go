// Package memory provides map-backed implementations of the store ports
// for development wiring and tests.
package memory

import (
	"context"
	"sync"

	"idman-gateway/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// Store implements every store port over in-process maps.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*domain.User
	byEmail  map[string]string
	hashes   map[string]string
	sessions map[string]*domain.Session
	roles    map[string]string // userID + "\x00" + serviceID -> role
	services map[string]*domain.Service
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:    make(map[string]*domain.User),
		byEmail:  make(map[string]string),
		hashes:   make(map[string]string),
		sessions: make(map[string]*domain.Session),
		roles:    make(map[string]string),
		services: make(map[string]*domain.Service),
	}
}

// AddUser registers a user with a password and a role for the service.
// Intended for seeding dev and test fixtures.
func (s *Store) AddUser(user *domain.User, password, serviceID, role string) error {
	s.mu.Lock()
	u := *user
	s.users[u.ID] = &u
	s.byEmail[u.Email] = u.ID
	if role != "" {
		s.roles[u.ID+"\x00"+serviceID] = role
	}
	s.mu.Unlock()

	if password != "" {
		return s.Set(context.Background(), user.ID, password)
	}
	return nil
}

// AddService registers a service.
func (s *Store) AddService(service *domain.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc := *service
	s.services[svc.ID] = &svc
}

// Get implements domain.UserStore.
func (s *Store) Get(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, found := s.users[id]
	if !found {
		return nil, domain.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

// GetByEmail implements domain.UserStore.
func (s *Store) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, found := s.byEmail[email]
	if !found {
		return nil, domain.ErrUserNotFound
	}
	u := *s.users[id]
	return &u, nil
}

// Verify implements domain.PasswordStore. bcrypt compares in constant time.
func (s *Store) Verify(_ context.Context, userID, password string) (bool, error) {
	s.mu.RLock()
	hash, found := s.hashes[userID]
	s.mu.RUnlock()
	if !found {
		return false, nil
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}

// Set implements domain.PasswordStore.
func (s *Store) Set(_ context.Context, userID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.hashes[userID] = string(hash)
	s.mu.Unlock()
	return nil
}

// Create implements domain.SessionStore.
func (s *Store) Create(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := *session
	s.sessions[sess.ID] = &sess
	return nil
}

// GetSession implements domain.SessionStore's Get. Named to avoid clashing
// with the user lookup on the combined store.
func (s *Store) GetSession(_ context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, found := s.sessions[id]
	if !found {
		return nil, domain.ErrSessionNotFound
	}
	sess := *session
	return &sess, nil
}

// Role implements domain.UserRoleStore. A user with no binding has the
// empty role.
func (s *Store) Role(_ context.Context, userID, serviceID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roles[userID+"\x00"+serviceID], nil
}

// GetService implements domain.ServiceStore's Get.
func (s *Store) GetService(_ context.Context, id string) (*domain.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	service, found := s.services[id]
	if !found {
		return nil, domain.ErrServiceNotFound
	}
	svc := *service
	return &svc, nil
}

// Sessions exposes the store as a domain.SessionStore.
func (s *Store) Sessions() domain.SessionStore { return sessionView{s} }

// Services exposes the store as a domain.ServiceStore.
func (s *Store) Services() domain.ServiceStore { return serviceView{s} }

type sessionView struct{ *Store }

func (v sessionView) Get(ctx context.Context, id string) (*domain.Session, error) {
	return v.GetSession(ctx, id)
}

type serviceView struct{ *Store }

func (v serviceView) Get(ctx context.Context, id string) (*domain.Service, error) {
	return v.GetService(ctx, id)
}

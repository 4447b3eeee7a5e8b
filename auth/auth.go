// Package auth implements the companion's trivial identity layer:
// a user registry in the blob store, looked up by username or email.
// There are no sessions; identity tokens are stateless (see jwt.go).
package auth

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"tcg-companion-server/storage"
)

const usersKey = "users"

// User is one registered identity.
type User struct {
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service registers and looks up users.
type Service struct {
	mu    sync.Mutex
	blobs *storage.Store
	users []User
}

// NewService creates the identity service, hydrating users from the blob
// store. A corrupt or missing blob means an empty registry.
func NewService(blobs *storage.Store) *Service {
	s := &Service{blobs: blobs}

	var saved []User
	ok, err := blobs.Get(usersKey, &saved)
	if err != nil {
		slog.Warn("loading users", "tag", "auth", "err", err)
	}
	if ok {
		s.users = saved
	}
	return s
}

// Register creates a user with a generated avatar. Username is required
// and must not collide with an existing username or email.
func (s *Service) Register(username, email string) (User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return User{}, fmt.Errorf("username is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return User{}, fmt.Errorf("username %q is already taken", username)
		}
		if email != "" && u.Email != "" && strings.EqualFold(u.Email, email) {
			return User{}, fmt.Errorf("email %q is already registered", email)
		}
	}

	user := User{
		Username:  username,
		Email:     email,
		Avatar:    avatarURL(username),
		CreatedAt: time.Now(),
	}
	s.users = append(s.users, user)
	if err := s.blobs.Set(usersKey, s.users); err != nil {
		slog.Error("persisting users", "tag", "auth", "err", err)
	}
	slog.Info("user registered", "tag", "auth", "username", username)
	return user, nil
}

// Lookup finds a user by username or email, case-insensitively.
func (s *Service) Lookup(identifier string) (User, bool) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return User{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, identifier) {
			return u, true
		}
		if u.Email != "" && strings.EqualFold(u.Email, identifier) {
			return u, true
		}
	}
	return User{}, false
}

// avatarURL generates the deterministic avatar the app has always used.
func avatarURL(username string) string {
	return "https://api.dicebear.com/7.x/pixel-art/svg?seed=" + url.QueryEscape(username)
}

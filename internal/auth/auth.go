// Package auth is a thin collaborator around users and sid sessions. The
// commerce engine itself only ever sees a user id.
package auth

import (
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"chatstore/internal/domain"
	"chatstore/internal/repos"
)

var (
	ErrBadCreds   = errors.New("invalid email or password")
	ErrEmailTaken = errors.New("email already registered")
)

type Service struct {
	Users *repos.UserRepo
}

func NewService(users *repos.UserRepo) *Service { return &Service{Users: users} }

func (s *Service) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Register(name, email, password string) (*domain.User, error) {
	if _, err := s.Users.ByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, err
	}
	id, err := s.Users.Create(email, name, string(h))
	if err != nil {
		return nil, err
	}
	return s.Users.ByID(id)
}

func (s *Service) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *Service) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}

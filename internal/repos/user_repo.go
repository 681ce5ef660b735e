package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"chatstore/internal/domain"
)

type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.Get(&u, `
	  SELECT id, email, name, password_hash, role, created_at
	  FROM users WHERE LOWER(email) = LOWER(?)
	`, email); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id int64) (*domain.User, error) {
	var u domain.User
	if err := r.db.Get(&u, `
	  SELECT id, email, name, password_hash, role, created_at
	  FROM users WHERE id = ?
	`, id); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(email, name, hash string) (int64, error) {
	res, err := r.db.Exec(`
	  INSERT INTO users(email, name, password_hash) VALUES(?, ?, ?)
	`, email, name, hash)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// BindSession links a sid cookie to a user, creating the session row if needed.
func (r *UserRepo) BindSession(sid string, userID int64) error {
	_, err := r.db.Exec(`
	  INSERT INTO sessions(id, user_id, last_seen)
	  VALUES(?, ?, CURRENT_TIMESTAMP)
	  ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id, last_seen = CURRENT_TIMESTAMP
	`, sid, userID)
	return err
}

func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.db.Exec(`UPDATE sessions SET user_id = NULL WHERE id = ?`, sid)
	return err
}

// SessionUser resolves the user bound to a sid, (nil, nil) when anonymous.
func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	var u domain.User
	err := r.db.Get(&u, `
	  SELECT u.id, u.email, u.name, u.password_hash, u.role, u.created_at
	  FROM sessions s JOIN users u ON u.id = s.user_id
	  WHERE s.id = ?
	`, sid)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

package repos

import (
	"github.com/jmoiron/sqlx"

	"chatstore/internal/domain"
)

type ChatRepo struct{ db *sqlx.DB }

func NewChatRepo(db *sqlx.DB) *ChatRepo { return &ChatRepo{db: db} }

func (r *ChatRepo) Save(userID int64, sender domain.ChatSender, text string) error {
	_, err := r.db.Exec(`
	  INSERT INTO chat_messages(user_id, sender, message_text)
	  VALUES(?, ?, ?)
	`, userID, sender, text)
	return err
}

// History returns messages latest-first.
func (r *ChatRepo) History(userID int64, limit, offset int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []domain.ChatMessage
	err := r.db.Select(&out, `
	  SELECT id, user_id, timestamp, sender, message_text
	  FROM chat_messages WHERE user_id = ?
	  ORDER BY datetime(timestamp) DESC, id DESC
	  LIMIT ? OFFSET ?
	`, userID, limit, offset)
	return out, err
}

func (r *ChatRepo) Count(userID int64) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM chat_messages WHERE user_id = ?`, userID)
	return n, err
}

// Clear deletes the user's history and reports how many rows went.
func (r *ChatRepo) Clear(userID int64) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM chat_messages WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

package domain

type User struct {
	ID        int64  `db:"id"`
	Email     string `db:"email"`
	Name      string `db:"name"`
	Hash      string `db:"password_hash"`
	Role      string `db:"role"` // "USER" or "ADMIN"
	CreatedAt string `db:"created_at"`
}

func (u *User) IsAdmin() bool { return u.Role == "ADMIN" }

package models

import (
	"time"
)

// User represents a Discord user's economy account.
// Balances are mutated exclusively through atomic increments in the repository;
// the struct is a read snapshot, never written back wholesale.
type User struct {
	UserID    int64     `db:"user_id"`
	Cash      int64     `db:"cash"`
	Bank      int64     `db:"bank"`
	Debt      int64     `db:"debt"`
	Job       string    `db:"job"`
	XP        int64     `db:"xp"`
	Level     int       `db:"level"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NetWorth returns cash + bank - debt
func (u *User) NetWorth() int64 {
	return u.Cash + u.Bank - u.Debt
}

// RankedUser is a ranking row ordered by net worth
type RankedUser struct {
	UserID   int64
	NetWorth int64
}

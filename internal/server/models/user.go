package models

import "time"

// Role determines what a user may do across clubs and tournaments.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RolePlayer  Role = "player"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

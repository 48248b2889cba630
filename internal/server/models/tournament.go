package models

import "time"

// TournamentStatus tracks a tournament through its lifecycle.
type TournamentStatus string

const (
	TournamentScheduled TournamentStatus = "scheduled"
	TournamentRunning   TournamentStatus = "running"
	TournamentFinished  TournamentStatus = "finished"
)

type Tournament struct {
	ID         string
	ClubID     string
	Title      string
	BuyInCents int64
	StartsAt   time.Time
	Status     TournamentStatus
	CreatedAt  time.Time
}

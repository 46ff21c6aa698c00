package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories over one connection, or over one
// transaction when handed out by Transaction.
type Store struct {
	db *gorm.DB

	Users        UserRepository
	Profiles     ProfileRepository
	Teams        TeamRepository
	Hackathons   HackathonRepository
	Applications ApplicationRepository
	Interactions InteractionRepository
	FailedEmails FailedEmailJobRepository
}

// NewStore creates a Store backed by db
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Users:        NewUserRepository(db),
		Profiles:     NewProfileRepository(db),
		Teams:        NewTeamRepository(db),
		Hackathons:   NewHackathonRepository(db),
		Applications: NewApplicationRepository(db),
		Interactions: NewInteractionRepository(db),
		FailedEmails: NewFailedEmailJobRepository(db),
	}
}

// Transaction runs fn against a Store bound to a single transaction. Any
// error returned by fn rolls the whole transaction back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Ping checks database connectivity
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

package repository

import (
	"github.com/Zeethx/NebulaView/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User         UserRepository
	Subscription SubscriptionRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres, bcryptCost int) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db, bcryptCost),
		Subscription: NewSubscriptionRepository(db),
	}
}

package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users         *UserRepository
	Visas         *VisaExtensionRepository
	MOUs          *MOURepository
	Translations  *TranslationRepository
	Visitors      *VisitorRepository
	Documents     *DocumentRepository
	Notifications *NotificationRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(pool),
		Visas:         NewVisaExtensionRepository(pool),
		MOUs:          NewMOURepository(pool),
		Translations:  NewTranslationRepository(pool),
		Visitors:      NewVisitorRepository(pool),
		Documents:     NewDocumentRepository(pool),
		Notifications: NewNotificationRepository(pool),
	}
}

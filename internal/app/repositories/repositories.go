package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	SequenceRepository    *SequenceRepository
	CertificateRepository *CertificateRepository
	LetterRepository      *LetterRepository
	BatchRepository       *BatchRepository
	UserRepository        *UserRepository
	StatsRepository       *StatsRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	certificates := NewCertificateRepository(db)
	letters := NewLetterRepository(db)

	return &Repositories{
		SequenceRepository:    NewSequenceRepository(db),
		CertificateRepository: certificates,
		LetterRepository:      letters,
		BatchRepository:       NewBatchRepository(db, certificates, letters),
		UserRepository:        NewUserRepository(db),
		StatsRepository:       NewStatsRepository(db),
	}
}

// uuidEq matches column against a UUID. squirrel.Eq treats array values as
// IN lists, and uuid.UUID is a [16]byte.
func uuidEq(column string, id uuid.UUID) squirrel.Sqlizer {
	return squirrel.Expr(column+" = ?", id)
}

package bootstrap

import (
	pkgpostgresql "github.com/muhammadchandra19/exchange/pkg/postgresql"
	"github.com/muhammadchandra19/exchange/services/sequencer/internal/infrastructure/postgresql"
	"github.com/muhammadchandra19/exchange/services/sequencer/internal/infrastructure/redis"
)

// Repository is the persistence layer shared by the processes.
type Repository struct {
	Store     *postgresql.Store
	Batches   *postgresql.BatchRepository
	Positions *postgresql.PositionRepository
	Books     *redis.BookCache
}

// registerRepository registers the repository.
func (b *Bootstrap) registerRepository() {
	b.Repository.Store = postgresql.NewStore(b.Postgres, pkgpostgresql.NewTransaction(b.Postgres), b.Logger)
	b.Repository.Batches = postgresql.NewBatchRepository(b.Postgres, b.Logger)
	b.Repository.Positions = postgresql.NewPositionRepository(b.Postgres, b.Logger)
	b.Repository.Books = redis.NewBookCache(b.Redis, b.Logger)
}

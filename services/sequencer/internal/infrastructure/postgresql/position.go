package postgresql

import (
	"context"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/pkg/postgresql"
	positionv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/position/v1"
)

const listPositionsByAccountQuery = `SELECT ` + positionColumns + ` FROM positions WHERE account_id = $1 ORDER BY market_id`

// PositionRepository serves committed positions.
type PositionRepository struct {
	db     postgresql.PostgreSQLClient
	logger logger.Interface
}

var _ positionv1.Repository = (*PositionRepository)(nil)

// NewPositionRepository creates a new PositionRepository.
func NewPositionRepository(db postgresql.PostgreSQLClient, logger logger.Interface) *PositionRepository {
	return &PositionRepository{
		db:     db,
		logger: logger,
	}
}

// ListByAccount returns every position of accountID across markets.
func (r *PositionRepository) ListByAccount(ctx context.Context, accountID string) ([]*positionv1.Position, error) {
	rows, err := r.db.Query(ctx, listPositionsByAccountQuery, accountID)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer rows.Close()

	positions := []*positionv1.Position{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.TracerFromError(err)
	}
	return positions, nil
}

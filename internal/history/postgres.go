package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"supplyscope/internal/model"
)

// PGStore is the Postgres sink, for deployments where history must survive
// host replacement. Timestamps key the rows, so re-saving the bounded
// series only inserts the new tail.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &PGStore{pool: pool}, nil
}

func (s *PGStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Save upserts the series rows keyed by timestamp.
func (s *PGStore) Save(entries []model.BurnHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO burn_history (
				ts_ms, total_burned, gas_burned, compute_burned,
				inference_burned, bridge_burned, subnet_burned
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (ts_ms) DO NOTHING
		`,
			e.TimestampMs,
			int64(e.TotalBurned),
			int64(e.GasBurned),
			int64(e.ComputeBurned),
			int64(e.InferenceBurned),
			int64(e.BridgeBurned),
			int64(e.SubnetBurned),
		)
	}

	br := s.pool.SendBatch(context.Background(), batch)
	defer br.Close()

	for range entries {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// Load returns the most recent max entries in chronological order.
func (s *PGStore) Load(max int) ([]model.BurnHistoryEntry, error) {
	rows, err := s.pool.Query(context.Background(), `
		SELECT ts_ms, total_burned, gas_burned, compute_burned,
		       inference_burned, bridge_burned, subnet_burned
		FROM burn_history
		ORDER BY ts_ms DESC
		LIMIT $1
	`, max)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.BurnHistoryEntry
	for rows.Next() {
		var e model.BurnHistoryEntry
		var total, gas, compute, inference, bridge, subnet int64
		if err := rows.Scan(&e.TimestampMs, &total, &gas, &compute, &inference, &bridge, &subnet); err != nil {
			return nil, err
		}
		e.TotalBurned = uint64(total)
		e.GasBurned = uint64(gas)
		e.ComputeBurned = uint64(compute)
		e.InferenceBurned = uint64(inference)
		e.BridgeBurned = uint64(bridge)
		e.SubnetBurned = uint64(subnet)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// rows arrive newest-first; reverse into chronological order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

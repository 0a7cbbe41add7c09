package persist

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rms-sync-service/internal/domain"
)

// Postgres stores the snapshot as a single jsonb row keyed by slot
// name.
type Postgres struct {
	pool *pgxpool.Pool
	slot string
}

func NewPostgres(ctx context.Context, pool *pgxpool.Pool, slot string) (*Postgres, error) {
	if slot == "" {
		slot = DefaultSlot
	}
	_, err := pool.Exec(ctx, `
		create table if not exists snapshot_slots (
			slot text primary key,
			data jsonb not null,
			updated_at timestamptz not null default now()
		)
	`)
	if err != nil {
		return nil, err
	}
	return &Postgres{pool: pool, slot: slot}, nil
}

func (p *Postgres) Load(ctx context.Context) (domain.Snapshot, bool, error) {
	var data []byte
	err := p.pool.QueryRow(ctx, `select data from snapshot_slots where slot = $1`, p.slot).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, err
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		// Corrupt slot; caller falls back to seed data.
		return domain.Snapshot{}, false, nil
	}
	return snap, true, nil
}

func (p *Postgres) Save(ctx context.Context, snap domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		insert into snapshot_slots (slot, data, updated_at)
		values ($1, $2, now())
		on conflict (slot) do update set data = excluded.data, updated_at = now()
	`, p.slot, data)
	return err
}

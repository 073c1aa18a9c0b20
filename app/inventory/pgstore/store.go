// Package pgstore implements inventory.Store on Postgres. The schema lives in
// migrations/ and is applied by core/database.RunMigrations.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/foodpod-bot/foodpod/app/inventory"
	"github.com/foodpod-bot/foodpod/core/logger"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// Store is the Postgres backend.
type Store struct {
	db *sqlx.DB
}

var _ inventory.Store = (*Store)(nil)

// New wraps an open pool; Close closes it.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// mapErr turns constraint violations into inventory sentinels.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w", op, inventory.ErrExists)
		case pqForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, inventory.ErrNotFound)
		}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, inventory.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func requireRow(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, inventory.ErrNotFound)
	}
	return nil
}

func (s *Store) RegisterPod(ctx context.Context, pod string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO pods (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, pod)
	if err != nil {
		return false, mapErr("register pod", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("register pod: %w", err)
	}
	return n == 0, nil
}

func (s *Store) IsPodRegistered(ctx context.Context, pod string) (bool, error) {
	var ok bool
	err := s.db.GetContext(ctx, &ok, `SELECT EXISTS (SELECT 1 FROM pods WHERE id = $1)`, pod)
	if err != nil {
		return false, mapErr("check pod", err)
	}
	return ok, nil
}

func (s *Store) Pods(ctx context.Context) ([]string, error) {
	var pods []string
	if err := s.db.SelectContext(ctx, &pods, `SELECT id FROM pods ORDER BY id`); err != nil {
		return nil, mapErr("list pods", err)
	}
	return pods, nil
}

type dialogRow struct {
	Name string `db:"name"`
	Arg  string `db:"arg"`
}

func (s *Store) PendingDialog(ctx context.Context, pod string) (inventory.PendingDialog, error) {
	var row dialogRow
	err := s.db.GetContext(ctx, &row, `SELECT name, arg FROM dialogs WHERE pod_id = $1`, pod)
	if errors.Is(err, sql.ErrNoRows) {
		return inventory.IdleDialog(), nil
	}
	if err != nil {
		return inventory.PendingDialog{}, mapErr("get dialog", err)
	}
	return inventory.PendingDialog{Name: row.Name, Arg: row.Arg}, nil
}

func (s *Store) SetPendingDialog(ctx context.Context, pod string, d inventory.PendingDialog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dialogs (pod_id, name, arg) VALUES ($1, $2, $3)
		ON CONFLICT (pod_id) DO UPDATE SET name = EXCLUDED.name, arg = EXCLUDED.arg`,
		pod, d.Name, d.Arg)
	return mapErr("set dialog", err)
}

func (s *Store) AddStorage(ctx context.Context, pod, name string) error {
	if err := inventory.ValidateName("storage", name); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO storages (pod_id, name) VALUES ($1, $2)`, pod, name)
	return mapErr(fmt.Sprintf("storage %q", name), err)
}

func (s *Store) Storages(ctx context.Context, pod string) ([]string, error) {
	var names []string
	err := s.db.SelectContext(ctx, &names,
		`SELECT name FROM storages WHERE pod_id = $1 ORDER BY position`, pod)
	if err != nil {
		return nil, mapErr("list storages", err)
	}
	return names, nil
}

func (s *Store) DeleteStorage(ctx context.Context, pod, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM storages WHERE pod_id = $1 AND name = $2`, pod, name)
	if err != nil {
		return mapErr("delete storage", err)
	}
	if err := requireRow(fmt.Sprintf("storage %q", name), res); err != nil {
		return err
	}
	logger.Debug(ctx, "store", "store.storage.delete", slog.String("storage", name))
	return nil
}

func (s *Store) AddItem(ctx context.Context, pod, storage, name string) error {
	if err := inventory.ValidateName("item", name); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO items (pod_id, storage, name, quantity, expiry) VALUES ($1, $2, $3, 0, $4)`,
		pod, storage, name, inventory.SentinelExpiry)
	return mapErr(fmt.Sprintf("item %q", name), err)
}

func (s *Store) DeleteItem(ctx context.Context, pod, storage, name string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM items WHERE pod_id = $1 AND storage = $2 AND name = $3`, pod, storage, name)
	if err != nil {
		return mapErr("delete item", err)
	}
	return requireRow(fmt.Sprintf("item %q", name), res)
}

func (s *Store) Items(ctx context.Context, pod, storage string) ([]string, error) {
	var names []string
	err := s.db.SelectContext(ctx, &names,
		`SELECT name FROM items WHERE pod_id = $1 AND storage = $2 ORDER BY position`, pod, storage)
	if err != nil {
		return nil, mapErr("list items", err)
	}
	return names, nil
}

func (s *Store) ItemCount(ctx context.Context, pod, storage string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT count(*) FROM items WHERE pod_id = $1 AND storage = $2`, pod, storage)
	if err != nil {
		return 0, mapErr("count items", err)
	}
	return n, nil
}

func (s *Store) Quantity(ctx context.Context, pod, storage, item string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT quantity FROM items WHERE pod_id = $1 AND storage = $2 AND name = $3`, pod, storage, item)
	if err != nil {
		return 0, mapErr(fmt.Sprintf("item %q", item), err)
	}
	return n, nil
}

func (s *Store) SetQuantity(ctx context.Context, pod, storage, item string, qty int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE items SET quantity = $4 WHERE pod_id = $1 AND storage = $2 AND name = $3`,
		pod, storage, item, qty)
	if err != nil {
		return mapErr("set quantity", err)
	}
	return requireRow(fmt.Sprintf("item %q", item), res)
}

func (s *Store) Expiry(ctx context.Context, pod, storage, item string) (time.Time, error) {
	var d time.Time
	err := s.db.GetContext(ctx, &d,
		`SELECT expiry FROM items WHERE pod_id = $1 AND storage = $2 AND name = $3`, pod, storage, item)
	if err != nil {
		return time.Time{}, mapErr(fmt.Sprintf("item %q", item), err)
	}
	return inventory.CivilDate(d, nil), nil
}

func (s *Store) SetExpiry(ctx context.Context, pod, storage, item string, date time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE items SET expiry = $4 WHERE pod_id = $1 AND storage = $2 AND name = $3`,
		pod, storage, item, inventory.FormatDate(date))
	if err != nil {
		return mapErr("set expiry", err)
	}
	return requireRow(fmt.Sprintf("item %q", item), res)
}

// Info reports the server version. Connection failures are logged and turned
// into inventory.BackendUnavailableMessage.
func (s *Store) Info(ctx context.Context) (string, error) {
	var version string
	if err := s.db.GetContext(ctx, &version, `SHOW server_version`); err != nil {
		logger.Error(ctx, "db", "db.info",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return inventory.BackendUnavailableMessage, fmt.Errorf("postgres info: %w", err)
	}
	var pods int
	if err := s.db.GetContext(ctx, &pods, `SELECT count(*) FROM pods`); err != nil {
		return inventory.BackendUnavailableMessage, fmt.Errorf("postgres info: %w", err)
	}
	return fmt.Sprintf("🔧 Postgres backend %s: %d pods", version, pods), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

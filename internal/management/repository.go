package management

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"teagate/internal/constants"
	pkgerrors "teagate/pkg/errors"
	"teagate/pkg/metrics"
	"teagate/pkg/ruledsl"
)

const pqUniqueViolation = "23505"

type LotRepository interface {
	CreateTeaLot(ctx context.Context, lot *TeaLot) error
	// ImportTeaLots inserts all lots in one transaction.
	ImportTeaLots(ctx context.Context, lots []*TeaLot) error
	// ListTeaLots returns lots by id; limit <= 0 means no limit.
	ListTeaLots(ctx context.Context, limit int) ([]TeaLot, error)
	// GetTeaLot returns nil without error when the lot does not exist.
	GetTeaLot(ctx context.Context, id int64) (*TeaLot, error)
	GetTeaLotsByIDs(ctx context.Context, ids []int64) ([]TeaLot, error)
	DeleteTeaLot(ctx context.Context, id int64) (bool, error)
	DeleteTeaLots(ctx context.Context, ids []int64) (int64, error)
	CountTeaLots(ctx context.Context) (int, error)
}

type RuleRepository interface {
	CreateRule(ctx context.Context, rule *Rule) error
	ImportRules(ctx context.Context, rules []*Rule) error
	// ListRules returns rules in creation order, which is evaluation order.
	ListRules(ctx context.Context) ([]Rule, error)
	GetRule(ctx context.Context, id int64) (*Rule, error)
	UpdateRule(ctx context.Context, rule *Rule) (bool, error)
	DeleteRule(ctx context.Context, id int64) (bool, error)
	DeleteRules(ctx context.Context, ids []int64) (int64, error)
	CountRules(ctx context.Context) (int, error)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type scanner interface {
	Scan(dest ...interface{}) error
}

type PostgresRepository struct {
	db      *sql.DB
	service string
}

// NewPostgresRepository serves both repositories. service labels the query
// metrics.
func NewPostgresRepository(db *sql.DB, service string) *PostgresRepository {
	return &PostgresRepository{db: db, service: service}
}

func (r *PostgresRepository) observe(operation string, start time.Time, err *error) {
	metrics.ObserveDatabaseQuery(r.service, operation, start, *err)
}

func withQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, constants.DefaultDatabaseQueryTimeout)
}

const teaLotColumns = `id, lot_code, origin, variety, moisture, pesticide_level, aroma_score, created_at, updated_at`

func scanTeaLot(row scanner) (TeaLot, error) {
	var lot TeaLot
	err := row.Scan(
		&lot.ID, &lot.LotCode, &lot.Origin, &lot.Variety,
		&lot.Moisture, &lot.PesticideLevel, &lot.AromaScore,
		&lot.CreatedAt, &lot.UpdatedAt,
	)
	return lot, err
}

func insertTeaLot(ctx context.Context, q queryRower, lot *TeaLot) error {
	query := `
		INSERT INTO tea_lots (lot_code, origin, variety, moisture, pesticide_level, aroma_score)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRowContext(ctx, query,
		lot.LotCode, lot.Origin, lot.Variety,
		lot.Moisture, lot.PesticideLevel, lot.AromaScore,
	).Scan(&lot.ID, &lot.CreatedAt, &lot.UpdatedAt)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("tea lot with lotCode '%s' already exists", lot.LotCode))
	}
	return nil
}

func (r *PostgresRepository) CreateTeaLot(ctx context.Context, lot *TeaLot) (err error) {
	defer r.observe("create_tea_lot", time.Now(), &err)
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	return insertTeaLot(ctx, r.db, lot)
}

func (r *PostgresRepository) ImportTeaLots(ctx context.Context, lots []*TeaLot) (err error) {
	defer r.observe("import_tea_lots", time.Now(), &err)

	return r.inTx(ctx, func(tx *sql.Tx) error {
		for i, lot := range lots {
			if err := insertTeaLot(ctx, tx, lot); err != nil {
				return prefixError(err, fmt.Sprintf("teaLots[%d]", i))
			}
		}
		return nil
	})
}

func (r *PostgresRepository) ListTeaLots(ctx context.Context, limit int) (lots []TeaLot, err error) {
	defer r.observe("list_tea_lots", time.Now(), &err)
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `SELECT ` + teaLotColumns + ` FROM tea_lots ORDER BY id`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tea lots: %w", err)
	}
	defer rows.Close()

	return collectTeaLots(rows)
}

func (r *PostgresRepository) GetTeaLot(ctx context.Context, id int64) (lot *TeaLot, err error) {
	defer r.observe("get_tea_lot", time.Now(), &err)
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `SELECT `+teaLotColumns+` FROM tea_lots WHERE id = $1`, id)
	found, err := scanTeaLot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tea lot: %w", err)
	}
	return &found, nil
}

func (r *PostgresRepository) GetTeaLotsByIDs(ctx context.Context, ids []int64) (lots []TeaLot, err error) {
	defer r.observe("get_tea_lots_by_ids", time.Now(), &err)
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+teaLotColumns+` FROM tea_lots WHERE id = ANY($1) ORDER BY id`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get tea lots: %w", err)
	}
	defer rows.Close()

	return collectTeaLots(rows)
}

func collectTeaLots(rows *sql.Rows) ([]TeaLot, error) {
	lots := []TeaLot{}
	for rows.Next() {
		lot, err := scanTeaLot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tea lot: %w", err)
		}
		lots = append(lots, lot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tea lots: %w", err)
	}
	return lots, nil
}

func (r *PostgresRepository) DeleteTeaLot(ctx context.Context, id int64) (deleted bool, err error) {
	defer r.observe("delete_tea_lot", time.Now(), &err)
	n, err := r.exec(ctx, `DELETE FROM tea_lots WHERE id = $1`, id)
	return n > 0, err
}

func (r *PostgresRepository) DeleteTeaLots(ctx context.Context, ids []int64) (n int64, err error) {
	defer r.observe("delete_tea_lots", time.Now(), &err)
	return r.exec(ctx, `DELETE FROM tea_lots WHERE id = ANY($1)`, pq.Array(ids))
}

func (r *PostgresRepository) CountTeaLots(ctx context.Context) (n int, err error) {
	defer r.observe("count_tea_lots", time.Now(), &err)
	return r.count(ctx, `SELECT COUNT(*) FROM tea_lots`)
}

const ruleColumns = `id, name, dsl, severity, created_at, updated_at`

func scanRule(row scanner) (Rule, error) {
	var rule Rule
	var severity string
	if err := row.Scan(&rule.ID, &rule.Name, &rule.DSL, &severity, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
		return rule, err
	}
	parsed, err := ruledsl.ParseSeverity(severity)
	if err != nil {
		return rule, fmt.Errorf("rule %d: %w", rule.ID, err)
	}
	rule.Severity = parsed
	return rule, nil
}

func insertRule(ctx context.Context, q queryRower, rule *Rule) error {
	query := `
		INSERT INTO rules (name, dsl, severity)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRowContext(ctx, query, rule.Name, rule.DSL, rule.Severity.String()).
		Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("rule '%s' already exists", rule.Name))
	}
	return nil
}

func (r *PostgresRepository) CreateRule(ctx context.Context, rule *Rule) (err error) {
	defer r.observe("create_rule", time.Now(), &err)
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	return insertRule(ctx, r.db, rule)
}

func (r *PostgresRepository) ImportRules(ctx context.Context, rules []*Rule) (err error) {
	defer r.observe("import_rules", time.Now(), &err)

	return r.inTx(ctx, func(tx *sql.Tx) error {
		for i, rule := range rules {
			if err := insertRule(ctx, tx, rule); err != nil {
				return prefixError(err, fmt.Sprintf("rules[%d]", i))
			}
		}
		return nil
	})
}

func (r *PostgresRepository) ListRules(ctx context.Context) (rules []Rule, err error) {
	defer r.observe("list_rules", time.Now(), &err)
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+ruleColumns+` FROM rules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	rules = []Rule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}
	return rules, nil
}

func (r *PostgresRepository) GetRule(ctx context.Context, id int64) (rule *Rule, err error) {
	defer r.observe("get_rule", time.Now(), &err)
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	found, err := scanRule(r.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM rules WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return &found, nil
}

func (r *PostgresRepository) UpdateRule(ctx context.Context, rule *Rule) (updated bool, err error) {
	defer r.observe("update_rule", time.Now(), &err)
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		UPDATE rules
		SET name = $1, dsl = $2, severity = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`
	err = r.db.QueryRowContext(ctx, query, rule.Name, rule.DSL, rule.Severity.String(), rule.ID).
		Scan(&rule.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, mapWriteError(err, fmt.Sprintf("rule '%s' already exists", rule.Name))
	}
	return true, nil
}

func (r *PostgresRepository) DeleteRule(ctx context.Context, id int64) (deleted bool, err error) {
	defer r.observe("delete_rule", time.Now(), &err)
	n, err := r.exec(ctx, `DELETE FROM rules WHERE id = $1`, id)
	return n > 0, err
}

func (r *PostgresRepository) DeleteRules(ctx context.Context, ids []int64) (n int64, err error) {
	defer r.observe("delete_rules", time.Now(), &err)
	return r.exec(ctx, `DELETE FROM rules WHERE id = ANY($1)`, pq.Array(ids))
}

func (r *PostgresRepository) CountRules(ctx context.Context) (n int, err error) {
	defer r.observe("count_rules", time.Now(), &err)
	return r.count(ctx, `SELECT COUNT(*) FROM rules`)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresRepository) count(ctx context.Context, query string) (int, error) {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func mapWriteError(err error, conflictMessage string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return pkgerrors.ErrConflict.WithCause(err).WithDetail("message", conflictMessage)
	}
	return fmt.Errorf("failed to write row: %w", err)
}

func prefixError(err error, prefix string) error {
	var appErr *pkgerrors.Error
	if errors.As(err, &appErr) {
		msg, _ := appErr.Details["message"].(string)
		if msg == "" {
			msg = appErr.Message
		}
		return appErr.WithDetail("message", prefix+": "+msg)
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

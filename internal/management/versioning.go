package management

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type VersioningRepository interface {
	CreateVersion(ctx context.Context, version *RuleVersion) error
	// GetVersions returns the newest version first.
	GetVersions(ctx context.Context, ruleID int64) ([]RuleVersion, error)
	GetVersion(ctx context.Context, ruleID int64, version int) (*RuleVersion, error)
	GetNextVersion(ctx context.Context, ruleID int64) (int, error)
	CreateAuditLog(ctx context.Context, log *AuditLog) error
	// GetAuditLogs filters by rule when ruleID is set.
	GetAuditLogs(ctx context.Context, ruleID *int64, limit int) ([]AuditLog, error)
}

type postgresVersioningRepository struct {
	db *sql.DB
}

func NewVersioningRepository(db *sql.DB) VersioningRepository {
	return &postgresVersioningRepository{db: db}
}

const ruleVersionColumns = `id, rule_id, rule_data, version, changed_by, change_reason, created_at`

func scanRuleVersion(row scanner) (RuleVersion, error) {
	var v RuleVersion
	var data []byte
	var changedBy, changeReason sql.NullString
	if err := row.Scan(&v.ID, &v.RuleID, &data, &v.Version, &changedBy, &changeReason, &v.CreatedAt); err != nil {
		return v, err
	}
	v.RuleData = json.RawMessage(data)
	v.ChangedBy = changedBy.String
	v.ChangeReason = changeReason.String
	return v, nil
}

func (r *postgresVersioningRepository) CreateVersion(ctx context.Context, version *RuleVersion) error {
	if version.ID == "" {
		version.ID = uuid.New().String()
	}
	if version.CreatedAt.IsZero() {
		version.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO rule_versions (id, rule_id, rule_data, version, changed_by, change_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		version.ID, version.RuleID, []byte(version.RuleData), version.Version,
		nullString(version.ChangedBy), nullString(version.ChangeReason), version.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create rule version: %w", err)
	}
	return nil
}

func (r *postgresVersioningRepository) GetVersions(ctx context.Context, ruleID int64) ([]RuleVersion, error) {
	query := `SELECT ` + ruleVersionColumns + ` FROM rule_versions WHERE rule_id = $1 ORDER BY version DESC`

	rows, err := r.db.QueryContext(ctx, query, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer rows.Close()

	versions := []RuleVersion{}
	for rows.Next() {
		v, err := scanRuleVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (r *postgresVersioningRepository) GetVersion(ctx context.Context, ruleID int64, version int) (*RuleVersion, error) {
	query := `SELECT ` + ruleVersionColumns + ` FROM rule_versions WHERE rule_id = $1 AND version = $2`

	v, err := scanRuleVersion(r.db.QueryRowContext(ctx, query, ruleID, version))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	return &v, nil
}

func (r *postgresVersioningRepository) GetNextVersion(ctx context.Context, ruleID int64) (int, error) {
	var version int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM rule_versions WHERE rule_id = $1`, ruleID,
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get next version: %w", err)
	}
	return version, nil
}

func (r *postgresVersioningRepository) CreateAuditLog(ctx context.Context, log *AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}

	oldValue, err := marshalAuditValue(log.OldValue)
	if err != nil {
		return fmt.Errorf("failed to marshal old value: %w", err)
	}
	newValue, err := marshalAuditValue(log.NewValue)
	if err != nil {
		return fmt.Errorf("failed to marshal new value: %w", err)
	}

	query := `
		INSERT INTO rule_audit_logs (id, rule_id, action, old_value, new_value, changed_by, change_reason, ip_address, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		log.ID, log.RuleID, log.Action, oldValue, newValue,
		log.ChangedBy, nullString(log.ChangeReason), nullString(log.IPAddress), log.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

func (r *postgresVersioningRepository) GetAuditLogs(ctx context.Context, ruleID *int64, limit int) ([]AuditLog, error) {
	query := `
		SELECT id, rule_id, action, old_value, new_value, changed_by, change_reason, ip_address, timestamp
		FROM rule_audit_logs
	`
	args := []interface{}{}
	if ruleID != nil {
		query += ` WHERE rule_id = $1 ORDER BY timestamp DESC LIMIT $2`
		args = append(args, *ruleID, limit)
	} else {
		query += ` ORDER BY timestamp DESC LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	logs := []AuditLog{}
	for rows.Next() {
		var entry AuditLog
		var id sql.NullInt64
		var oldValue, newValue []byte
		var changeReason, ipAddress sql.NullString

		if err := rows.Scan(
			&entry.ID, &id, &entry.Action, &oldValue, &newValue,
			&entry.ChangedBy, &changeReason, &ipAddress, &entry.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		if id.Valid {
			entry.RuleID = &id.Int64
		}
		entry.ChangeReason = changeReason.String
		entry.IPAddress = ipAddress.String

		if len(oldValue) > 0 {
			if err := json.Unmarshal(oldValue, &entry.OldValue); err != nil {
				return nil, fmt.Errorf("failed to unmarshal old value: %w", err)
			}
		}
		if len(newValue) > 0 {
			if err := json.Unmarshal(newValue, &entry.NewValue); err != nil {
				return nil, fmt.Errorf("failed to unmarshal new value: %w", err)
			}
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func marshalAuditValue(value map[string]interface{}) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	return json.Marshal(value)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// ruleSnapshot is the JSON stored for each rule version.
func ruleSnapshot(rule *Rule) (json.RawMessage, error) {
	data, err := json.Marshal(rule)
	if err != nil {
		return nil, err
	}
	return data, nil
}

package management

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	pkgerrors "teagate/pkg/errors"
	"teagate/pkg/models"
)

type memoryStore struct {
	mu     sync.Mutex
	nextID int64
	lots   map[int64]TeaLot
	rules  map[int64]Rule
	err    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{lots: map[int64]TeaLot{}, rules: map[int64]Rule{}}
}

func (m *memoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memoryStore) CreateTeaLot(_ context.Context, lot *TeaLot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.lots {
		if existing.LotCode == lot.LotCode {
			return pkgerrors.ErrConflict.WithDetail("message", fmt.Sprintf("tea lot with lotCode '%s' already exists", lot.LotCode))
		}
	}
	lot.ID = m.id()
	lot.CreatedAt = time.Now()
	lot.UpdatedAt = lot.CreatedAt
	m.lots[lot.ID] = *lot
	return nil
}

func (m *memoryStore) ImportTeaLots(ctx context.Context, lots []*TeaLot) error {
	for _, lot := range lots {
		if err := m.CreateTeaLot(ctx, lot); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryStore) ListTeaLots(_ context.Context, limit int) ([]TeaLot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	lots := make([]TeaLot, 0, len(m.lots))
	for _, lot := range m.lots {
		lots = append(lots, lot)
	}
	sort.Slice(lots, func(i, j int) bool { return lots[i].ID < lots[j].ID })
	if limit > 0 && len(lots) > limit {
		lots = lots[:limit]
	}
	return lots, nil
}

func (m *memoryStore) GetTeaLot(_ context.Context, id int64) (*TeaLot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lot, ok := m.lots[id]
	if !ok {
		return nil, nil
	}
	return &lot, nil
}

func (m *memoryStore) GetTeaLotsByIDs(ctx context.Context, ids []int64) ([]TeaLot, error) {
	var lots []TeaLot
	for _, id := range ids {
		lot, _ := m.GetTeaLot(ctx, id)
		if lot != nil {
			lots = append(lots, *lot)
		}
	}
	return lots, nil
}

func (m *memoryStore) DeleteTeaLot(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.lots[id]
	delete(m.lots, id)
	return ok, nil
}

func (m *memoryStore) DeleteTeaLots(ctx context.Context, ids []int64) (int64, error) {
	var n int64
	for _, id := range ids {
		if ok, _ := m.DeleteTeaLot(ctx, id); ok {
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) CountTeaLots(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lots), nil
}

func (m *memoryStore) CreateRule(_ context.Context, rule *Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	rule.ID = m.id()
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = rule.CreatedAt
	m.rules[rule.ID] = *rule
	return nil
}

func (m *memoryStore) ImportRules(ctx context.Context, rules []*Rule) error {
	for _, rule := range rules {
		if err := m.CreateRule(ctx, rule); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryStore) ListRules(_ context.Context) ([]Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	rules := make([]Rule, 0, len(m.rules))
	for _, rule := range m.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules, nil
}

func (m *memoryStore) GetRule(_ context.Context, id int64) (*Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rule, ok := m.rules[id]
	if !ok {
		return nil, nil
	}
	return &rule, nil
}

func (m *memoryStore) UpdateRule(_ context.Context, rule *Rule) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[rule.ID]; !ok {
		return false, nil
	}
	rule.UpdatedAt = time.Now()
	m.rules[rule.ID] = *rule
	return true, nil
}

func (m *memoryStore) DeleteRule(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rules[id]
	delete(m.rules, id)
	return ok, nil
}

func (m *memoryStore) DeleteRules(ctx context.Context, ids []int64) (int64, error) {
	var n int64
	for _, id := range ids {
		if ok, _ := m.DeleteRule(ctx, id); ok {
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) CountRules(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rules), nil
}

type memoryVersioning struct {
	mu       sync.Mutex
	versions []RuleVersion
	logs     []AuditLog
}

func (v *memoryVersioning) CreateVersion(_ context.Context, version *RuleVersion) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.versions = append(v.versions, *version)
	return nil
}

func (v *memoryVersioning) GetVersions(_ context.Context, ruleID int64) ([]RuleVersion, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []RuleVersion
	for i := len(v.versions) - 1; i >= 0; i-- {
		if v.versions[i].RuleID == ruleID {
			out = append(out, v.versions[i])
		}
	}
	return out, nil
}

func (v *memoryVersioning) GetVersion(ctx context.Context, ruleID int64, version int) (*RuleVersion, error) {
	versions, _ := v.GetVersions(ctx, ruleID)
	for _, rv := range versions {
		if rv.Version == version {
			return &rv, nil
		}
	}
	return nil, nil
}

func (v *memoryVersioning) GetNextVersion(ctx context.Context, ruleID int64) (int, error) {
	versions, _ := v.GetVersions(ctx, ruleID)
	return len(versions) + 1, nil
}

func (v *memoryVersioning) CreateAuditLog(_ context.Context, log *AuditLog) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.logs = append(v.logs, *log)
	return nil
}

func (v *memoryVersioning) GetAuditLogs(_ context.Context, ruleID *int64, limit int) ([]AuditLog, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []AuditLog
	for _, l := range v.logs {
		if ruleID != nil && (l.RuleID == nil || *l.RuleID != *ruleID) {
			continue
		}
		out = append(out, l)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type recordingProducer struct {
	mu        sync.Mutex
	published []models.MessageEnvelope
}

func (p *recordingProducer) Publish(_ context.Context, _ string, msg models.MessageEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, msg)
	return nil
}

func (p *recordingProducer) Close() error { return nil }

func (p *recordingProducer) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.published))
	for i, msg := range p.published {
		out[i], _ = msg.Payload["action"].(string)
	}
	return out
}

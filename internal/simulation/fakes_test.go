package simulation

import (
	"context"
	"errors"
	"sync"

	"teagate/internal/deduplication"
	"teagate/internal/management"
	"teagate/pkg/models"
	"teagate/pkg/ruledsl"
)

const (
	moistureDSL  = `rule("Moisture Check") { whenMoisture { it > 9.0 } then BLOCK }`
	pesticideDSL = `rule("Pesticide Check") { whenPesticideLevel { it > 0.15 } then WARNING }`
	aromaDSL     = `rule("Aroma Check") { whenAromaScore { it < 70 } then INFO }`
)

func seededRules() []management.Rule {
	return []management.Rule{
		{ID: 1, Name: "Moisture Check", DSL: moistureDSL, Severity: ruledsl.SeverityBlock},
		{ID: 2, Name: "Pesticide Check", DSL: pesticideDSL, Severity: ruledsl.SeverityWarning},
		{ID: 3, Name: "Aroma Check", DSL: aromaDSL, Severity: ruledsl.SeverityInfo},
	}
}

type fakeLots struct {
	management.LotRepository
	lots []management.TeaLot
}

func (f *fakeLots) GetTeaLot(_ context.Context, id int64) (*management.TeaLot, error) {
	for _, lot := range f.lots {
		if lot.ID == id {
			l := lot
			return &l, nil
		}
	}
	return nil, nil
}

func (f *fakeLots) GetTeaLotsByIDs(_ context.Context, ids []int64) ([]management.TeaLot, error) {
	var out []management.TeaLot
	for _, lot := range f.lots {
		for _, id := range ids {
			if lot.ID == id {
				out = append(out, lot)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeLots) ListTeaLots(_ context.Context, _ int) ([]management.TeaLot, error) {
	return f.lots, nil
}

type fakeRules struct {
	mu    sync.Mutex
	rules []management.Rule
	err   error
	calls int
}

func (f *fakeRules) ListRules(context.Context) ([]management.Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]management.Rule(nil), f.rules...), nil
}

type memoryArchive struct {
	mu      sync.Mutex
	reports []Report
	err     error
}

func (a *memoryArchive) Save(_ context.Context, report Report) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.reports = append(a.reports, report)
	return nil
}

func (a *memoryArchive) List(_ context.Context, lotCode string, limit int) ([]Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	var out []Report
	for i := len(a.reports) - 1; i >= 0 && len(out) < limit; i-- {
		if lotCode == "" || a.reports[i].LotCode == lotCode {
			out = append(out, a.reports[i])
		}
	}
	return out, nil
}

type fakeDedup struct {
	seen     map[string]bool
	released []string
	err      error
}

func newFakeDedup() *fakeDedup {
	return &fakeDedup{seen: map[string]bool{}}
}

func (d *fakeDedup) Check(_ context.Context, event models.InspectionEvent) (deduplication.Result, error) {
	if d.err != nil {
		return deduplication.Result{}, d.err
	}
	hash := event.InspectionID + "|" + event.LotCode
	if d.seen[hash] {
		return deduplication.Result{Unique: false, Hash: hash}, nil
	}
	d.seen[hash] = true
	return deduplication.Result{Unique: true, Hash: hash}, nil
}

func (d *fakeDedup) Release(_ context.Context, result deduplication.Result) error {
	delete(d.seen, result.Hash)
	d.released = append(d.released, result.Hash)
	return nil
}

type recordingProducer struct {
	mu        sync.Mutex
	published []models.MessageEnvelope
	topics    []string
	err       error
}

func (p *recordingProducer) Publish(_ context.Context, topic string, msg models.MessageEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.published = append(p.published, msg)
	return nil
}

func (p *recordingProducer) Close() error { return nil }

var errStoreDown = errors.New("store down")

package simulation

import (
	"context"
	"fmt"
	"time"

	"teagate/internal/broker"
	"teagate/internal/constants"
	"teagate/internal/deduplication"
	"teagate/internal/logger"
	"teagate/pkg/logging"
	"teagate/pkg/metrics"
	"teagate/pkg/models"
	"teagate/pkg/retry"
	"teagate/pkg/ruledsl"
	"teagate/pkg/tracing"
)

type Deduplicator interface {
	Check(ctx context.Context, event models.InspectionEvent) (deduplication.Result, error)
	Release(ctx context.Context, result deduplication.Result) error
}

// Inspector turns inspection events into lot verdicts. HandleInspection is a
// broker.HandlerFunc.
type Inspector struct {
	simulator    *Service
	rules        *RuleSet
	dedup        Deduplicator
	producer     broker.Producer
	verdictTopic string
	logger       logger.Logger
}

func NewInspector(simulator *Service, rules *RuleSet, dedup Deduplicator, producer broker.Producer, verdictTopic string, log logger.Logger) *Inspector {
	return &Inspector{
		simulator:    simulator,
		rules:        rules,
		dedup:        dedup,
		producer:     producer,
		verdictTopic: verdictTopic,
		logger:       log,
	}
}

func (i *Inspector) HandleInspection(ctx context.Context, msg models.MessageEnvelope) error {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, constants.ServiceInspection, "inspection.handle")
	defer span.End()

	event, err := models.InspectionFromEnvelope(msg)
	if err != nil {
		metrics.ObserveInspection("invalid", time.Since(start))
		i.logger.WarnwCtx(ctx, "Rejecting malformed inspection event", "id", msg.ID, "error", err)
		return retry.NewFatalError(fmt.Errorf("invalid inspection event %s: %w", msg.ID, err))
	}
	ctx = logging.WithInspectionID(ctx, event.InspectionID)
	ctx = logging.WithLotCode(ctx, event.LotCode)

	dedup, err := i.dedup.Check(ctx, event)
	if err != nil {
		metrics.ObserveInspection("error", time.Since(start))
		return err
	}
	if !dedup.Unique {
		metrics.ObserveInspection("duplicate", time.Since(start))
		i.logger.DebugwCtx(ctx, "Dropping duplicate inspection", "hash", dedup.Hash)
		return nil
	}

	snapshot := ruledsl.TeaLotSnapshot{
		Moisture:       event.Moisture,
		PesticideLevel: event.PesticideLevel,
		AromaScore:     event.AromaScore,
	}
	resp, err := i.simulator.SimulateSnapshot(ctx, event.LotCode, snapshot, i.rules.Rules())
	if err != nil {
		i.release(ctx, dedup)
		metrics.ObserveInspection("error", time.Since(start))
		return err
	}

	evaluatedAt := time.Now().UTC()
	verdict := resp.verdict(event.InspectionID, evaluatedAt)
	envelope := models.NewMessageEnvelopeBuilder().
		WithType(models.MessageTypeVerdict).
		WithSource(constants.ServiceInspection).
		WithPayload(verdict.Payload()).
		WithTraceID(logging.GetTraceID(ctx)).
		Build()

	if err := i.producer.Publish(ctx, i.verdictTopic, *envelope); err != nil {
		i.release(ctx, dedup)
		metrics.ObserveInspection("error", time.Since(start))
		return fmt.Errorf("failed to publish verdict for inspection %s: %w", event.InspectionID, err)
	}

	i.simulator.Archive(ctx, Report{
		Source:       SourceInspection,
		InspectionID: event.InspectionID,
		LotCode:      event.LotCode,
		Shippable:    resp.Shippable,
		Results:      resp.Results,
		SimulatedAt:  evaluatedAt,
	})

	status := "shippable"
	if !resp.Shippable {
		status = "blocked"
	}
	metrics.ObserveInspection(status, time.Since(start))
	i.logger.InfowCtx(ctx, "Published lot verdict", "shippable", resp.Shippable, "rules", len(resp.Results))
	return nil
}

// release lets the consumer's retry process the inspection again.
func (i *Inspector) release(ctx context.Context, result deduplication.Result) {
	if err := i.dedup.Release(ctx, result); err != nil {
		i.logger.WarnwCtx(ctx, "Failed to release dedup hash", "hash", result.Hash, "error", err)
	}
}

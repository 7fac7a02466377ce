package deduplication

import (
	"context"
	"fmt"
	"sync"
	"time"

	"teagate/internal/config"
	"teagate/internal/constants"
	"teagate/internal/logger"
	"teagate/pkg/metrics"
	"teagate/pkg/models"
	"teagate/pkg/tracing"
)

// HashableFields are the inspection payload keys fields_to_hash may name.
var HashableFields = map[string]bool{
	"inspection_id":   true,
	"lot_code":        true,
	"moisture":        true,
	"pesticide_level": true,
	"aroma_score":     true,
	"inspected_at":    true,
}

// Result of a dedup check.
type Result struct {
	Unique bool
	Hash   string
	// Fallback is set when Redis failed and the allow policy let the
	// inspection through unchecked.
	Fallback bool
}

type Service struct {
	repo         Repository
	hasher       *Hasher
	ttl          time.Duration
	onRedisError string
	logger       logger.Logger

	fieldsMu     sync.RWMutex
	fieldsToHash []string
}

func NewService(repo Repository, cfg config.InspectionConfig, log logger.Logger) (*Service, error) {
	hasher, err := NewHasher(cfg.HashAlgorithm)
	if err != nil {
		return nil, err
	}

	fields := cfg.FieldsToHash
	if len(fields) == 0 {
		fields = []string{"inspection_id", "lot_code"}
		log.Infow("No fields_to_hash configured, using defaults", "fields", fields)
	}
	if err := validateFields(fields); err != nil {
		return nil, err
	}

	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Duration(constants.DefaultDedupTTLSeconds) * time.Second
	}

	onRedisError := cfg.OnRedisError
	if onRedisError == "" {
		onRedisError = constants.FallbackAllow
	}

	return &Service{
		repo:         repo,
		hasher:       hasher,
		ttl:          ttl,
		onRedisError: onRedisError,
		logger:       log,
		fieldsToHash: append([]string(nil), fields...),
	}, nil
}

// Check claims the inspection's hash in Redis. The first caller sees Unique;
// replays within the TTL do not.
func (s *Service) Check(ctx context.Context, event models.InspectionEvent) (Result, error) {
	ctx, span := tracing.StartSpan(ctx, constants.ServiceInspection, "deduplication.check")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	hash, err := s.hasher.ComputeHash(event.Payload(), s.GetFieldsToHash())
	if err != nil {
		return Result{}, fmt.Errorf("failed to compute hash for inspection %s: %w", event.InspectionID, err)
	}

	unique, err := s.repo.SetNX(ctx, constants.CacheKeyPrefixInspection+hash, time.Now().Unix(), s.ttl)
	if err != nil {
		return s.handleRedisError(ctx, err, hash, event.InspectionID)
	}

	return Result{Unique: unique, Hash: hash}, nil
}

func (s *Service) handleRedisError(ctx context.Context, err error, hash, inspectionID string) (Result, error) {
	if s.onRedisError == constants.FallbackAllow {
		metrics.FallbackUsageTotal.WithLabelValues("deduplication", "allow_on_error").Inc()
		s.logger.WarnwCtx(ctx, "Redis error during dedup check, allowing inspection",
			"error", err,
			"inspection_id", inspectionID,
		)
		return Result{Unique: true, Hash: hash, Fallback: true}, nil
	}

	metrics.FallbackUsageTotal.WithLabelValues("deduplication", "deny_on_error").Inc()
	return Result{}, fmt.Errorf("redis error during dedup check for inspection %s: %w", inspectionID, err)
}

// Release forgets a claimed hash so a redelivered inspection is processed
// again. It is used when the verdict could not be published.
func (s *Service) Release(ctx context.Context, result Result) error {
	if result.Hash == "" || result.Fallback {
		return nil
	}
	return s.repo.Delete(ctx, constants.CacheKeyPrefixInspection+result.Hash)
}

// UpdateFieldsToHash swaps the hashed field list at runtime. It is driven by
// config events.
func (s *Service) UpdateFieldsToHash(fields []string) error {
	if len(fields) == 0 {
		return fmt.Errorf("fields_to_hash cannot be empty")
	}
	if err := validateFields(fields); err != nil {
		return err
	}

	s.fieldsMu.Lock()
	s.fieldsToHash = append([]string(nil), fields...)
	s.fieldsMu.Unlock()

	s.logger.Infow("Updated fields to hash", "fields", fields)
	return nil
}

func (s *Service) GetFieldsToHash() []string {
	s.fieldsMu.RLock()
	defer s.fieldsMu.RUnlock()
	return append([]string(nil), s.fieldsToHash...)
}

// RunCacheMetrics samples the dedup key count every interval until ctx is
// done.
func (s *Service) RunCacheMetrics(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			size, err := s.repo.GetCacheSize(ctx, constants.CacheKeyPrefixInspection)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Debugw("Failed to get cache size for metrics", "error", err)
				continue
			}
			metrics.SetDedupCacheSize(size)
		}
	}
}

func validateFields(fields []string) error {
	for _, f := range fields {
		if !HashableFields[f] {
			return fmt.Errorf("unknown field to hash %q", f)
		}
	}
	return nil
}

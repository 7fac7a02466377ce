package simulation

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"teagate/internal/config"
	"teagate/pkg/circuitbreaker"
)

type ReportArchive interface {
	Save(ctx context.Context, report Report) error
	// List returns reports newest first. An empty lotCode lists all lots.
	List(ctx context.Context, lotCode string, limit int) ([]Report, error)
}

type MongoReportArchive struct {
	collection *mongo.Collection
}

func NewMongoReportArchive(db *mongo.Database, collection string) *MongoReportArchive {
	return &MongoReportArchive{collection: db.Collection(collection)}
}

func (a *MongoReportArchive) Save(ctx context.Context, report Report) error {
	if _, err := a.collection.InsertOne(ctx, report); err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

func (a *MongoReportArchive) List(ctx context.Context, lotCode string, limit int) ([]Report, error) {
	filter := bson.M{}
	if lotCode != "" {
		filter["lot_code"] = lotCode
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "simulated_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := a.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reports: %w", err)
	}
	defer cursor.Close(ctx)

	reports := []Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode reports: %w", err)
	}
	return reports, nil
}

const archiveBreakerName = "mongodb-archive"

// CircuitBreakerArchive stops writing to MongoDB after repeated failures so
// simulations are not slowed by a dead archive.
type CircuitBreakerArchive struct {
	archive ReportArchive
	cb      *circuitbreaker.Wrapper
}

func NewCircuitBreakerArchive(archive ReportArchive, cfg config.CircuitBreakerConfig) ReportArchive {
	if !cfg.Enabled {
		return archive
	}
	return &CircuitBreakerArchive{
		archive: archive,
		cb:      circuitbreaker.NewWrapper(circuitbreaker.FromConfig(archiveBreakerName, cfg)),
	}
}

func (a *CircuitBreakerArchive) Save(ctx context.Context, report Report) error {
	return circuitbreaker.Do(ctx, a.cb, func(ctx context.Context) error {
		return a.archive.Save(ctx, report)
	})
}

func (a *CircuitBreakerArchive) List(ctx context.Context, lotCode string, limit int) ([]Report, error) {
	return circuitbreaker.Execute(ctx, a.cb, func(ctx context.Context) ([]Report, error) {
		return a.archive.List(ctx, lotCode, limit)
	})
}

package migrations

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReportIndexes are the indexes of the simulation report archive.
func ReportIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "lot_code", Value: 1}, {Key: "simulated_at", Value: -1}},
			Options: options.Index().SetName("idx_reports_lot_code_simulated_at"),
		},
		{
			Keys:    bson.D{{Key: "simulated_at", Value: -1}},
			Options: options.Index().SetName("idx_reports_simulated_at"),
		},
		{
			Keys:    bson.D{{Key: "inspection_id", Value: 1}},
			Options: options.Index().SetName("idx_reports_inspection_id").SetSparse(true),
		},
	}
}

// EnsureReportIndexes creates the archive indexes. The collection itself is
// created by MongoDB on first insert.
func EnsureReportIndexes(ctx context.Context, db *mongo.Database, collection string) error {
	_, err := db.Collection(collection).Indexes().CreateMany(ctx, ReportIndexes())
	if err != nil && !mongo.IsDuplicateKeyError(err) && !isIndexConflict(err) {
		return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
	}
	return nil
}

func isIndexConflict(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		// IndexOptionsConflict, IndexKeySpecsConflict
		return cmdErr.Code == 85 || cmdErr.Code == 86
	}
	return false
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bank-transaction-engine/internal/domain/transaction"
)

const (
	// AuditCollectionName is the name of the audit collection in MongoDB
	AuditCollectionName = "transaction_audit"
)

// AuditRepository implements the transaction.AuditRepository interface for MongoDB
type AuditRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewAuditRepository creates a new MongoDB audit repository
func NewAuditRepository(logger *slog.Logger, db *mongo.Database) transaction.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends one audit record. Records are never updated.
func (r *AuditRepository) Create(ctx context.Context, record *transaction.AuditRecord) error {
	if record == nil || record.TransactionID == "" {
		return errors.New("audit record requires a transaction id")
	}

	collection := r.db.Collection(AuditCollectionName)
	if _, err := collection.InsertOne(ctx, record); err != nil {
		r.logger.Error("Failed to create audit record",
			"transaction_id", record.TransactionID,
			"operation", string(record.Operation),
			"error", err)
		return fmt.Errorf("failed to create audit record: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves every audit record for a transaction, oldest first
func (r *AuditRepository) GetByTransactionID(ctx context.Context, transactionID string) ([]*transaction.AuditRecord, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"transaction_id": transactionID}
	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: 1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to find audit records",
			"transaction_id", transactionID,
			"error", err)
		return nil, fmt.Errorf("failed to find audit records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*transaction.AuditRecord
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode audit records",
			"transaction_id", transactionID,
			"error", err)
		return nil, fmt.Errorf("failed to decode audit records: %w", err)
	}

	return records, nil
}

package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmlopes/processamento/internal/domain/models"
)

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("document not found")

// ErrVersionConflict indicates the daily document changed since it was read.
// The aggregate write is guarded by an optimistic version token so two
// concurrent consolidation runs for the same date cannot both win.
var ErrVersionConflict = errors.New("daily document version conflict")

const (
	productionCollection      = "producao_diaria"
	configCollection          = "configuracoes"
	classificationsCollection = "metas_classificacao"

	goalConfigID = "metas"
)

// Repository is the MongoDB-backed store for daily production documents and
// goal configuration.
type Repository struct {
	client *mongo.Client
	dbName string
}

// NewRepository connects to MongoDB and verifies the connection.
func NewRepository(ctx context.Context, uri string, dbName string) (*Repository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Repository{
		client: client,
		dbName: dbName,
	}, nil
}

func (r *Repository) production() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(productionCollection)
}

// GetDailyDocument fetches the production document for one date.
func (r *Repository) GetDailyDocument(ctx context.Context, dateKey string) (*models.DailyProductionDocument, error) {
	var doc models.DailyProductionDocument
	err := r.production().FindOne(ctx, bson.M{"_id": dateKey}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch daily document %s: %w", dateKey, err)
	}
	return &doc, nil
}

// ReplaceShiftEntries replaces the full entry list of one shift, creating the
// daily document when absent. Re-imported data invalidates the date's
// consolidation: processado flips back to "não" and the aggregate is cleared.
func (r *Repository) ReplaceShiftEntries(ctx context.Context, dateKey string, shift int, entries []models.ShiftEntry) error {
	field, err := shiftField(shift)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set":   bson.M{field: entries, "processado": models.ProcessadoNao},
		"$unset": bson.M{"Processamento": ""},
		"$inc":   bson.M{"versao": int64(1)},
	}
	_, err = r.production().UpdateOne(ctx, bson.M{"_id": dateKey}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to replace shift entries for %s: %w", dateKey, err)
	}
	return nil
}

// SetPlannedKg updates the planejamento value of one product line within a
// shift. The operator enters planned quantities incrementally after import.
func (r *Repository) SetPlannedKg(ctx context.Context, dateKey string, shift int, code string, kgPlanned float64) error {
	field, err := shiftField(shift)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": dateKey, field + ".codigo": code}
	update := bson.M{
		"$set": bson.M{field + ".$.planejamento": kgPlanned},
		"$inc": bson.M{"versao": int64(1)},
	}
	res, err := r.production().UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set planned kg for %s/%s: %w", dateKey, code, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUnprocessed returns all daily documents flagged "não", ordered by date.
func (r *Repository) ListUnprocessed(ctx context.Context) ([]models.DailyProductionDocument, error) {
	cursor, err := r.production().Find(ctx,
		bson.M{"processado": models.ProcessadoNao},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []models.DailyProductionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode unprocessed documents: %w", err)
	}
	return docs, nil
}

// SaveAggregate persists a consolidation result. The write only succeeds when
// the stored version still matches expectedVersion; the aggregate field has a
// single writer and a stale session must not overwrite a newer run.
func (r *Repository) SaveAggregate(ctx context.Context, dateKey string, result *models.ProcessamentoResult, expectedVersion int64) error {
	filter := bson.M{"_id": dateKey, "versao": expectedVersion}
	if expectedVersion == 0 {
		// Documents written by the import flow before any consolidation may not
		// carry a version field yet.
		filter = bson.M{"_id": dateKey, "$or": bson.A{
			bson.M{"versao": expectedVersion},
			bson.M{"versao": bson.M{"$exists": false}},
		}}
	}
	update := bson.M{
		"$set": bson.M{"Processamento": result, "processado": models.ProcessadoSim},
		"$inc": bson.M{"versao": int64(1)},
	}
	res, err := r.production().UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to save aggregate for %s: %w", dateKey, err)
	}
	if res.MatchedCount == 0 {
		count, err := r.production().CountDocuments(ctx, bson.M{"_id": dateKey})
		if err == nil && count == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

// ListProcessedBetween returns consolidated documents with fromKey <= dateKey
// <= toKey, ordered by date.
func (r *Repository) ListProcessedBetween(ctx context.Context, fromKey, toKey string) ([]models.DailyProductionDocument, error) {
	filter := bson.M{
		"_id":        bson.M{"$gte": fromKey, "$lte": toKey},
		"processado": models.ProcessadoSim,
	}
	cursor, err := r.production().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list processed documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []models.DailyProductionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode processed documents: %w", err)
	}
	return docs, nil
}

// GetGoalConfig fetches the monthly goal configuration document.
func (r *Repository) GetGoalConfig(ctx context.Context) (*models.MonthlyGoalConfig, error) {
	coll := r.client.Database(r.dbName).Collection(configCollection)

	var cfg models.MonthlyGoalConfig
	err := coll.FindOne(ctx, bson.M{"_id": goalConfigID}).Decode(&cfg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch goal config: %w", err)
	}
	return &cfg, nil
}

// SaveGoalConfig upserts the monthly goal configuration document.
func (r *Repository) SaveGoalConfig(ctx context.Context, cfg models.MonthlyGoalConfig) error {
	coll := r.client.Database(r.dbName).Collection(configCollection)

	update := bson.M{"$set": bson.M{
		"meta_minima_mensal": cfg.MinimumMonthlyTargetKg,
		"dias_uteis_mes":     cfg.WorkingDaysInMonth,
	}}
	_, err := coll.UpdateOne(ctx, bson.M{"_id": goalConfigID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save goal config: %w", err)
	}
	return nil
}

// ListClassificationTargets returns all persisted per-classification target
// overrides.
func (r *Repository) ListClassificationTargets(ctx context.Context) ([]models.ClassificationTarget, error) {
	coll := r.client.Database(r.dbName).Collection(classificationsCollection)

	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list classification targets: %w", err)
	}
	defer cursor.Close(ctx)

	var targets []models.ClassificationTarget
	if err := cursor.All(ctx, &targets); err != nil {
		return nil, fmt.Errorf("failed to decode classification targets: %w", err)
	}
	return targets, nil
}

// UpsertClassificationTarget stores one classification's target override.
func (r *Repository) UpsertClassificationTarget(ctx context.Context, target models.ClassificationTarget) error {
	coll := r.client.Database(r.dbName).Collection(classificationsCollection)

	update := bson.M{"$set": bson.M{"meta_kg": target.TargetKg}}
	_, err := coll.UpdateOne(ctx, bson.M{"_id": target.Classification}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert classification target %s: %w", target.Classification, err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func shiftField(shift int) (string, error) {
	switch shift {
	case models.Shift1:
		return "1_turno", nil
	case models.Shift2:
		return "2_turno", nil
	}
	return "", fmt.Errorf("invalid shift %d", shift)
}

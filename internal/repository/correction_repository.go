package repository

import (
	"context"

	"exam-engine/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CorrectionRepository struct {
	Col *mongo.Collection
}

func NewCorrectionRepository(db *mongo.Database) *CorrectionRepository {
	return &CorrectionRepository{Col: db.Collection("corrections")}
}

func (r *CorrectionRepository) CreateMany(ctx context.Context, corrections []models.Correction) error {
	if len(corrections) == 0 {
		return nil
	}
	docs := make([]interface{}, len(corrections))
	for i, c := range corrections {
		docs[i] = c
	}
	_, err := r.Col.InsertMany(ctx, docs)
	return err
}

func (r *CorrectionRepository) FindBySession(ctx context.Context, sessionID string) ([]models.Correction, error) {
	opts := options.Find().SetSort(bson.M{"sequence": 1})
	cur, err := r.Col.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var corrections []models.Correction
	for cur.Next(ctx) {
		var c models.Correction
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		corrections = append(corrections, c)
	}
	return corrections, nil
}

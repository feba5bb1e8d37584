package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"konkan-properties/internal/models"
)

// PropertyStore handles listing CRUD in MongoDB.
type PropertyStore struct {
	col *mongo.Collection
}

func NewPropertyStore(db *mongo.Database) *PropertyStore {
	return &PropertyStore{col: db.Collection("properties")}
}

func (s *PropertyStore) Insert(ctx context.Context, p *models.Property) (*models.Property, error) {
	p.PostedAt = time.Now()
	res, err := s.col.InsertOne(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("mongo insert property: %w", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return p, nil
}

func (s *PropertyStore) GetByID(ctx context.Context, id string) (*models.Property, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var p models.Property
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListByStatus returns listings in the given status sorted by sortField,
// newest first.
func (s *PropertyStore) ListByStatus(ctx context.Context, status models.PropertyStatus, sortField string) ([]models.Property, error) {
	opts := options.Find().SetSort(bson.D{{Key: sortField, Value: -1}})
	return s.find(ctx, bson.M{"status": status}, opts)
}

// ListBySeller returns a seller's listings regardless of status, newest first.
func (s *PropertyStore) ListBySeller(ctx context.Context, sellerID string) ([]models.Property, error) {
	opts := options.Find().SetSort(bson.D{{Key: "posted_at", Value: -1}})
	return s.find(ctx, bson.M{"seller": sellerID}, opts)
}

// GetByIDs fetches the given listings in one query, keyed by hex id.
func (s *PropertyStore) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[string]*models.Property, error) {
	out := make(map[string]*models.Property, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	props, err := s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
	if err != nil {
		return nil, err
	}
	for i := range props {
		out[props[i].ID.Hex()] = &props[i]
	}
	return out, nil
}

// SetStatus moves a listing to the given status and stamps approved_at or
// sold_at as appropriate. Rejection clears neither timestamp and no status
// guard is applied here; the owner-path guard lives in the handler.
func (s *PropertyStore) SetStatus(ctx context.Context, id string, status models.PropertyStatus) (*models.Property, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.M{"status": status}
	switch status {
	case models.StatusApproved:
		set["approved_at"] = time.Now()
	case models.StatusSold:
		set["sold_at"] = time.Now()
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Property
	err = s.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// IncrementInterest adjusts the denormalized interest counter.
func (s *PropertyStore) IncrementInterest(ctx context.Context, id primitive.ObjectID, delta int) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"interest_count": delta}})
	return err
}

func (s *PropertyStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Property, error) {
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var props []models.Property
	if err := cur.All(ctx, &props); err != nil {
		return nil, err
	}
	return props, nil
}

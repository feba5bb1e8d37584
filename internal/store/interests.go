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

// InterestStore handles buyer enquiries in MongoDB.
type InterestStore struct {
	col *mongo.Collection
}

func NewInterestStore(db *mongo.Database) *InterestStore {
	return &InterestStore{col: db.Collection("interests")}
}

// EnsureIndexes creates the unique (buyer, property) index. Duplicate
// registrations then fail atomically at insert time, so two concurrent
// requests for the same pair cannot both succeed.
func (s *InterestStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "buyer", Value: 1}, {Key: "property", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *InterestStore) Insert(ctx context.Context, i *models.Interest) (*models.Interest, error) {
	i.CreatedAt = time.Now()
	if i.Status == "" {
		i.Status = models.InterestPending
	}
	res, err := s.col.InsertOne(ctx, i)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("mongo insert interest: %w", err)
	}
	i.ID = res.InsertedID.(primitive.ObjectID)
	return i, nil
}

// Delete removes an enquiry. Used to compensate when the counter increment
// fails after a successful insert.
func (s *InterestStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// ListByBuyer returns a buyer's enquiries, newest first.
func (s *InterestStore) ListByBuyer(ctx context.Context, buyerID string) ([]models.Interest, error) {
	return s.find(ctx, bson.M{"buyer": buyerID})
}

// ListAll returns every enquiry, newest first.
func (s *InterestStore) ListAll(ctx context.Context) ([]models.Interest, error) {
	return s.find(ctx, bson.M{})
}

// UpdateStatus sets an enquiry's status by direct field update.
func (s *InterestStore) UpdateStatus(ctx context.Context, id string, status models.InterestStatus) (*models.Interest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var i models.Interest
	err = s.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"status": status}}, opts).Decode(&i)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &i, nil
}

func (s *InterestStore) find(ctx context.Context, filter bson.M) ([]models.Interest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var interests []models.Interest
	if err := cur.All(ctx, &interests); err != nil {
		return nil, err
	}
	return interests, nil
}

package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront-backend/models"
)

var (
	// ErrNotFound is returned when no order matches the lookup key.
	ErrNotFound = errors.New("order not found")
	// ErrConflict is returned when a versioned update lost the race to a
	// concurrent writer. Callers retry from a fresh read.
	ErrConflict = errors.New("order was modified concurrently")
	// ErrDuplicateOrderID is returned when the unique order_id index rejects
	// an insert. Creation retries with a freshly generated identifier.
	ErrDuplicateOrderID = errors.New("duplicate order id")
)

// OrderRepository defines data access for orders. Updates are optimistic:
// the caller supplies the full desired sub-state together with the version
// it read; the store never merges concurrent partial updates.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Order, error)
	FindByOwnerOrEmail(ctx context.Context, userID *primitive.ObjectID, email string, all bool) ([]models.Order, error)
	UpdateWithVersion(ctx context.Context, id primitive.ObjectID, version int64, set bson.M) error
}

// MongoOrderRepository implements OrderRepository on a MongoDB collection.
type MongoOrderRepository struct {
	collection *mongo.Collection
}

// NewMongoOrderRepository creates a MongoOrderRepository.
func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{collection: db.Collection("orders")}
}

// EnsureIndexes creates the unique external-id index and the listing indexes.
func (r *MongoOrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_email", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return err
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	order.Version = 1

	res, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateOrderID
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	return nil
}

func (r *MongoOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	return r.findOne(ctx, bson.M{"order_id": orderID})
}

func (r *MongoOrderRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Order, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"shipping_details.tracking_number": trackingNumber},
		bson.M{"shipping_details.awb_number": trackingNumber},
	}})
}

func (r *MongoOrderRepository) FindByOwnerOrEmail(ctx context.Context, userID *primitive.ObjectID, email string, all bool) ([]models.Order, error) {
	filter := bson.M{}
	if !all {
		switch {
		case userID != nil:
			filter["user_id"] = *userID
		case email != "":
			filter["user_email"] = strings.ToLower(email)
		default:
			return nil, errors.New("either userID or email must be provided")
		}
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateWithVersion applies set to the order identified by id, conditioned on
// the version being unchanged since the caller's read. The version counter is
// incremented on success. Distinguishes a lost race from a missing document.
func (r *MongoOrderRepository) UpdateWithVersion(ctx context.Context, id primitive.ObjectID, version int64, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "version": version},
		bson.M{"$set": set, "$inc": bson.M{"version": 1}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the document is gone or another writer bumped the version.
		if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Err(); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrNotFound
			}
			return err
		}
		return ErrConflict
	}
	return nil
}

func (r *MongoOrderRepository) findOne(ctx context.Context, filter bson.M) (*models.Order, error) {
	var order models.Order
	if err := r.collection.FindOne(ctx, filter).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront-backend/models"
)

// ErrProductNotFound is returned when no product matches the lookup key.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines data access for catalog entries.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	Find(ctx context.Context, filters *models.ProductFilters) ([]models.Product, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MongoProductRepository implements ProductRepository on a MongoDB collection.
type MongoProductRepository struct {
	collection *mongo.Collection
}

// NewMongoProductRepository creates a MongoProductRepository.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{collection: db.Collection("products")}
}

// EnsureIndexes creates the unique SKU index and listing indexes.
func (r *MongoProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sku", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})
	return err
}

func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	res, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}
	return nil
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoProductRepository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"sku": sku})
}

func (r *MongoProductRepository) Find(ctx context.Context, filters *models.ProductFilters) ([]models.Product, int64, error) {
	filter := bson.M{}
	if filters.Category != "" {
		filter["category"] = filters.Category
	}
	if filters.IsActive != nil {
		filter["is_active"] = *filters.IsActive
	}
	if filters.Search != "" {
		pattern := primitive.Regex{Pattern: filters.Search, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"sku": pattern},
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	sortOrder := -1
	if filters.SortOrder == "asc" {
		sortOrder = 1
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: sortBy, Value: sortOrder}}).
		SetSkip(int64((filters.Page - 1) * filters.Limit)).
		SetLimit(int64(filters.Limit))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *MongoProductRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error) {
	set["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product models.Product
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *MongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *MongoProductRepository) findOne(ctx context.Context, filter bson.M) (*models.Product, error) {
	var product models.Product
	if err := r.collection.FindOne(ctx, filter).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shoe-store/internal/models"
)

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(collection *mongo.Collection) *ProductRepository {
	return &ProductRepository{
		collection: collection,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	var product models.Product
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &product, nil
}

// FindMany lists products matching the filter in stable name order.
func (r *ProductRepository) FindMany(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := bson.M{}

	if filter.Category != "" {
		query["category"] = filter.Category
	}

	price := bson.M{}
	if filter.MinPriceCents != nil {
		price["$gte"] = *filter.MinPriceCents
	}
	if filter.MaxPriceCents != nil {
		price["$lte"] = *filter.MaxPriceCents
	}
	if len(price) > 0 {
		query["price_cents"] = price
	}

	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"brand": pattern},
			bson.M{"description": pattern},
		}
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return products, nil
}

// ReserveStock performs the check-then-decrement as a single conditional
// write: the update only matches while the size's counter still covers the
// requested quantity, so concurrent reservations on the last units
// serialize inside the storage engine and the counter can never go negative.
func (r *ProductRepository) ReserveStock(ctx context.Context, productID, size string, quantity int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return false, ErrProductNotFound
	}

	filter := bson.M{
		"_id": objID,
		"sizes": bson.M{"$elemMatch": bson.M{
			"size":  size,
			"stock": bson.M{"$gte": quantity},
		}},
	}
	update := bson.M{
		"$inc": bson.M{"sizes.$.stock": -quantity},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return result.ModifiedCount == 1, nil
}

// ReleaseStock increments a size counter. Used only when leaving a
// cancellable state; the caller guards against double release.
func (r *ProductRepository) ReleaseStock(ctx context.Context, productID, size string, quantity int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return ErrProductNotFound
	}

	filter := bson.M{"_id": objID, "sizes.size": size}
	update := bson.M{
		"$inc": bson.M{"sizes.$.stock": quantity},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if result.MatchedCount == 0 {
		return ErrSizeNotFound
	}

	return nil
}

// RestockSize adds delta to a size counter, appending the size entry when
// the product does not carry the label yet.
func (r *ProductRepository) RestockSize(ctx context.Context, productID, size string, delta int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return ErrProductNotFound
	}

	filter := bson.M{"_id": objID, "sizes.size": size}
	update := bson.M{
		"$inc": bson.M{"sizes.$.stock": delta},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	// Product exists but has no entry for this size yet.
	push := bson.M{
		"$push": bson.M{"sizes": models.SizeStock{Size: size, Stock: delta}},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	result, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, push)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

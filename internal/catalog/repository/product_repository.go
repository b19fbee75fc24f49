package repository

import (
	"context"

	"agri_market_service/internal/catalog/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductRepository read access to the listing catalog.
type ProductRepository interface {
	// FindByIDs loads listings in one batch, keyed by id. Unknown ids are
	// simply absent from the result.
	FindByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
	// FindByID loads one listing, nil when absent.
	FindByID(ctx context.Context, id string) (*domain.Product, error)
}

type productRepository struct {
	coll *mongo.Collection
}

// NewMongoProductRepository create a ProductRepository over the products
// collection.
func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &productRepository{
		coll: db.Collection("products"),
	}
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	result := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	filter := bson.M{"_id": bson.M{"$in": ids}}
	opts := options.Find().SetProjection(bson.M{
		"name":                   1,
		"seller_id":              1,
		"category":               1,
		"price":                  1,
		"unit":                   1,
		"quantity":               1,
		"minimum_order_quantity": 1,
		"image":                  1,
	})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}

	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &p, nil
}

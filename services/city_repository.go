package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"citymap-server/models"
	"citymap-server/utils/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CityRepository supplies the static record set. Order matters: a record's
// position becomes its feature id.
type CityRepository interface {
	LoadCities(ctx context.Context) ([]models.CityRecord, error)
}

// FileCityRepository reads a JSON array of cities from disk.
type FileCityRepository struct {
	Path string
}

func (r FileCityRepository) LoadCities(ctx context.Context) ([]models.CityRecord, error) {
	return readCitiesFile(r.Path)
}

func readCitiesFile(path string) ([]models.CityRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open city file: %w", err)
	}
	defer file.Close()

	var cities []models.CityRecord
	if err := json.NewDecoder(file).Decode(&cities); err != nil {
		return nil, fmt.Errorf("decode city file %s: %w", path, err)
	}
	return cities, nil
}

// cityDocument is the stored form; index keeps the source order.
type cityDocument struct {
	Index             int `bson:"index"`
	models.CityRecord `bson:",inline"`
}

// MongoCityRepository loads cities from a MongoDB collection, seeding it from
// a JSON file the first time.
type MongoCityRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	seedPath   string
}

func NewMongoCityRepository(ctx context.Context, uri, database, collection, seedPath string) (*MongoCityRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	logger.L().Info("mongo_connected", "database", database, "collection", collection)

	repo := &MongoCityRepository{
		client:     client,
		collection: client.Database(database).Collection(collection),
		seedPath:   seedPath,
	}

	count, err := repo.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count cities: %w", err)
	}
	if count == 0 {
		logger.L().Info("mongo_seed_begin", "path", seedPath)
		if err := repo.seed(ctx); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

func (r *MongoCityRepository) seed(ctx context.Context) error {
	cities, err := readCitiesFile(r.seedPath)
	if err != nil {
		return err
	}
	if len(cities) == 0 {
		return nil
	}

	docs := make([]any, 0, len(cities))
	for i, c := range cities {
		docs = append(docs, cityDocument{Index: i, CityRecord: c})
	}
	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("seed cities: %w", err)
	}
	logger.L().Info("mongo_seed_done", "inserted", len(result.InsertedIDs))
	return nil
}

func (r *MongoCityRepository) LoadCities(ctx context.Context) ([]models.CityRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "index", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find cities: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []cityDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode cities: %w", err)
	}
	cities := make([]models.CityRecord, 0, len(docs))
	for _, d := range docs {
		cities = append(cities, d.CityRecord)
	}
	return cities, nil
}

func (r *MongoCityRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

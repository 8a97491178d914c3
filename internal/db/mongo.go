// Package db mirrors the accepted corpus into MongoDB for ad-hoc querying.
// The JSON file store remains the durable source of truth; the mirror is
// optional and enabled through the db section of the config.
package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"presidency_scraper/internal/config"
	"presidency_scraper/internal/models"
)

type Mirror struct {
	client   *mongo.Client
	speeches *mongo.Collection
}

func Connect(cfg config.DBConfig) (*Mirror, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Connection))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	m := &Mirror{
		client:   client,
		speeches: client.Database(cfg.Database).Collection(cfg.Collection),
	}
	if err := m.createIndexes(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mirror) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := m.speeches.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "url", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create url index: %w", err)
	}
	return nil
}

type speechDoc struct {
	URL           string `bson:"url"`
	Scraped       int64  `bson:"scraped"`
	models.Speech `bson:",inline"`
}

// SaveAll upserts every record by URL. Re-mirroring an unchanged corpus is
// a no-op apart from the scraped timestamp.
func (m *Mirror) SaveAll(corpus models.Corpus) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	now := time.Now().Unix()
	for url, speech := range corpus {
		doc := speechDoc{URL: url, Scraped: now, Speech: speech}
		_, err := m.speeches.UpdateOne(ctx,
			bson.M{"url": url},
			bson.M{"$set": doc},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("upsert %s: %w", url, err)
		}
	}
	return nil
}

func (m *Mirror) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

/*
 * Copyright 2020 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package mongo implements database interfaces using MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	gotime "time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/yorkie-team/revisiond/api/types"
	"github.com/yorkie-team/revisiond/server/backend/database"
	"github.com/yorkie-team/revisiond/server/logging"
)

// Client is a client that connects to Mongo DB and reads or saves revisions.
type Client struct {
	config *Config
	client *mongo.Client
}

// Dial creates an instance of Client and dials the given MongoDB.
func Dial(conf *Config) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.ParseConnectionTimeout())
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(conf.ConnectionURI).
		SetRegistry(NewRegistry())

	if conf.MonitoringEnabled {
		monitor := NewQueryMonitor(conf.ParseSlowQueryThreshold())
		clientOptions.SetMonitor(monitor.CreateCommandMonitor())
	}

	client, err := mongo.Connect(clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	ctxPing, cancelPing := context.WithTimeout(ctx, conf.ParsePingTimeout())
	defer cancelPing()

	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	if err := ensureIndexes(ctx, client.Database(conf.RevisionDatabase)); err != nil {
		return nil, err
	}

	logging.DefaultLogger().Infof("MongoDB connected, URI: %s, DB: %s", conf.ConnectionURI, conf.RevisionDatabase)

	return &Client{
		config: conf,
		client: client,
	}, nil
}

// Close all resources of this client.
func (c *Client) Close() error {
	if err := c.client.Disconnect(context.Background()); err != nil {
		return fmt.Errorf("close mongo client: %w", err)
	}

	return nil
}

// CreateDocInfo creates a new document with the given content.
func (c *Client) CreateDocInfo(
	ctx context.Context,
	content string,
	authorship string,
	createdAt gotime.Time,
) (*database.DocInfo, error) {
	info := &database.DocInfo{
		ID:         types.ID(bson.NewObjectID().Hex()),
		Content:    content,
		Authorship: authorship,
		CreatedAt:  createdAt,
	}

	if _, err := c.collection(ColDocuments).InsertOne(ctx, info); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	return info, nil
}

// FindDocInfoByID returns the document of the given ID.
func (c *Client) FindDocInfoByID(ctx context.Context, id types.ID) (*database.DocInfo, error) {
	result := c.collection(ColDocuments).FindOne(ctx, bson.M{
		"_id": id,
	})
	if errors.Is(result.Err(), mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", id, database.ErrDocumentNotFound)
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("find document: %w", result.Err())
	}

	info := database.DocInfo{}
	if err := result.Decode(&info); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	return &info, nil
}

// UpdateDocInfoContent records a live edit of the document.
func (c *Client) UpdateDocInfoContent(
	ctx context.Context,
	id types.ID,
	content string,
	authorship string,
	changedAt gotime.Time,
) (*database.DocInfo, error) {
	result := c.collection(ColDocuments).FindOneAndUpdate(ctx, bson.M{
		"_id": id,
	}, bson.M{
		"$set": bson.M{
			"content":       content,
			"authorship":    authorship,
			"lastchange_at": changedAt,
		},
	}, options.FindOneAndUpdate().SetReturnDocument(options.After))
	if errors.Is(result.Err(), mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", id, database.ErrDocumentNotFound)
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("update document content: %w", result.Err())
	}

	info := database.DocInfo{}
	if err := result.Decode(&info); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	return &info, nil
}

// UpdateDocInfoSavedAt marks the document as saved at the given time.
func (c *Client) UpdateDocInfoSavedAt(ctx context.Context, id types.ID, savedAt gotime.Time) error {
	result, err := c.collection(ColDocuments).UpdateOne(ctx, bson.M{
		"_id": id,
	}, bson.M{
		"$set": bson.M{
			"saved_at": savedAt,
		},
	})
	if err != nil {
		return fmt.Errorf("update saved time of %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", id, database.ErrDocumentNotFound)
	}

	return nil
}

// FindDocInfosPendingSave returns the documents whose latest content may not
// be captured by a revision yet. Unset times are stored as the zero time.
func (c *Client) FindDocInfosPendingSave(ctx context.Context) ([]*database.DocInfo, error) {
	zero := gotime.Time{}
	cursor, err := c.collection(ColDocuments).Find(ctx, bson.M{
		"$expr": bson.M{
			"$and": bson.A{
				bson.M{"$or": bson.A{
					bson.M{"$eq": bson.A{"$lastchange_at", zero}},
					bson.M{"$gt": bson.A{"$lastchange_at", "$created_at"}},
				}},
				bson.M{"$or": bson.A{
					bson.M{"$eq": bson.A{"$saved_at", zero}},
					bson.M{"$lt": bson.A{"$saved_at", "$lastchange_at"}},
				}},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("find documents pending save: %w", err)
	}

	var candidates []*database.DocInfo
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, fmt.Errorf("fetch documents pending save: %w", err)
	}

	var infos []*database.DocInfo
	for _, info := range candidates {
		if info.IsPendingSave() {
			infos = append(infos, info)
		}
	}

	return infos, nil
}

// PurgeDocument removes the document and every revision of it.
func (c *Client) PurgeDocument(ctx context.Context, id types.ID) error {
	if _, err := c.collection(ColRevisions).DeleteMany(ctx, bson.M{
		"doc_id": id,
	}); err != nil {
		return fmt.Errorf("purge revisions of %s: %w", id, err)
	}

	result, err := c.collection(ColDocuments).DeleteOne(ctx, bson.M{
		"_id": id,
	})
	if err != nil {
		return fmt.Errorf("purge document of %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", id, database.ErrDocumentNotFound)
	}

	return nil
}

// CreateRevisionInfo stores a new revision.
func (c *Client) CreateRevisionInfo(
	ctx context.Context,
	info *database.RevisionInfo,
) (*database.RevisionInfo, error) {
	created := info.DeepCopy()
	created.ID = types.ID(bson.NewObjectID().Hex())

	if _, err := c.collection(ColRevisions).InsertOne(ctx, created); err != nil {
		return nil, fmt.Errorf("create revision of %s: %w", info.DocID, err)
	}

	return created, nil
}

// FindRevisionInfosByDocID returns the revisions of the document, newest first.
func (c *Client) FindRevisionInfosByDocID(
	ctx context.Context,
	docID types.ID,
) ([]*database.RevisionInfo, error) {
	cursor, err := c.collection(ColRevisions).Find(ctx, bson.M{
		"doc_id": docID,
	}, options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	}))
	if err != nil {
		return nil, fmt.Errorf("find revisions of %s: %w", docID, err)
	}

	var infos []*database.RevisionInfo
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("fetch revisions of %s: %w", docID, err)
	}

	return infos, nil
}

// CountRevisionInfosSince returns the number of revisions of the document
// created at or after the given time.
func (c *Client) CountRevisionInfosSince(
	ctx context.Context,
	docID types.ID,
	since gotime.Time,
) (int, error) {
	count, err := c.collection(ColRevisions).CountDocuments(ctx, bson.M{
		"doc_id": docID,
		"created_at": bson.M{
			"$gte": since,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("count revisions of %s: %w", docID, err)
	}

	return int(count), nil
}

// UpdateRevisionInfoUpdatedAt bumps the update time of the revision.
func (c *Client) UpdateRevisionInfoUpdatedAt(
	ctx context.Context,
	id types.ID,
	updatedAt gotime.Time,
) (*database.RevisionInfo, error) {
	result := c.collection(ColRevisions).FindOneAndUpdate(ctx, bson.M{
		"_id": id,
	}, bson.M{
		"$set": bson.M{
			"updated_at": updatedAt,
		},
	}, options.FindOneAndUpdate().SetReturnDocument(options.After))
	if errors.Is(result.Err(), mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", id, database.ErrRevisionNotFound)
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("update revision of %s: %w", id, result.Err())
	}

	info := database.RevisionInfo{}
	if err := result.Decode(&info); err != nil {
		return nil, fmt.Errorf("decode revision: %w", err)
	}

	return &info, nil
}

// ClearRevisionInfoContent drops the full content of the revision.
func (c *Client) ClearRevisionInfoContent(ctx context.Context, id types.ID) error {
	result, err := c.collection(ColRevisions).UpdateOne(ctx, bson.M{
		"_id": id,
	}, bson.M{
		"$set": bson.M{
			"content": nil,
		},
	})
	if err != nil {
		return fmt.Errorf("clear content of revision %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", id, database.ErrRevisionNotFound)
	}

	return nil
}

func (c *Client) collection(
	name string,
	opts ...options.Lister[options.CollectionOptions],
) *mongo.Collection {
	return c.client.
		Database(c.config.RevisionDatabase).
		Collection(name, opts...)
}

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type RunnerMongo struct {
	URI          string
	AllowDiskUse bool
}

type InstanceMongo struct {
	client       *mongo.Client
	db           *mongo.Database
	allowDiskUse bool
}

func (r *RunnerMongo) Name() string { return EngineMongo }

func (r *RunnerMongo) Open(ctx context.Context, namespace string) (Instance, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(r.URI))
	if err != nil {
		return nil, err
	}
	// mongo.Connect does not dial, ping forces the handshake before the timer starts
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to connect to mongo database %v: %w", namespace, err)
	}
	return &InstanceMongo{
		client:       client,
		db:           client.Database(namespace),
		allowDiskUse: r.AllowDiskUse,
	}, nil
}

func (i *InstanceMongo) Name() string { return EngineMongo }

func (i *InstanceMongo) Execute(ctx context.Context, query Query) (Table, error) {
	pipeline, ok := query.(PipelineQuery)
	if !ok {
		return Table{}, fmt.Errorf("mongo can't execute %T", query)
	}
	cursor, err := i.db.Collection(pipeline.Collection).Aggregate(
		ctx,
		mongo.Pipeline(pipeline.Stages),
		options.Aggregate().SetAllowDiskUse(i.allowDiskUse),
	)
	if err != nil {
		return Table{}, err
	}
	documents := make([]bson.D, 0)
	if err := cursor.All(ctx, &documents); err != nil {
		return Table{}, err
	}
	return documentsTable(documents), nil
}

func (i *InstanceMongo) Close() error {
	return i.client.Disconnect(context.Background())
}

// documentsTable lays documents out as rows. Columns are the union of
// top-level field names in first-seen order, absent fields become nil.
func documentsTable(documents []bson.D) Table {
	index := make(map[string]int)
	columns := make([]string, 0)
	for _, document := range documents {
		for _, element := range document {
			if _, ok := index[element.Key]; !ok {
				index[element.Key] = len(columns)
				columns = append(columns, element.Key)
			}
		}
	}
	rows := make([][]any, 0, len(documents))
	for _, document := range documents {
		row := make([]any, len(columns))
		for _, element := range document {
			row[index[element.Key]] = documentValue(element.Value)
		}
		rows = append(rows, row)
	}
	return Table{Columns: columns, Rows: rows}
}

func documentValue(value any) any {
	switch v := value.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case primitive.Decimal128:
		return v.String()
	case primitive.DateTime:
		return v.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(v.T), 0).UTC()
	case bson.D, bson.A, bson.M:
		return extJSON(v)
	}
	return value
}

func extJSON(value any) string {
	data, err := bson.MarshalExtJSON(bson.D{{Key: "v", Value: value}}, false, false)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return strings.TrimSuffix(strings.TrimPrefix(string(data), `{"v":`), "}")
}

package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDocumentsTable(t *testing.T) {
	id := primitive.NewObjectID()
	created := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	documents := []bson.D{
		{{Key: "_id", Value: id}, {Key: "order_id", Value: "O1"}, {Key: "total", Value: 10.5}},
		{{Key: "order_id", Value: "O2"}, {Key: "created", Value: primitive.NewDateTimeFromTime(created)}},
		{{Key: "total", Value: int32(3)}, {Key: "order_id", Value: "O3"}},
	}

	table := documentsTable(documents)
	require.Equal(t, []string{"_id", "order_id", "total", "created"}, table.Columns)
	require.Equal(t, 3, table.Len())
	require.Equal(t, []any{id.Hex(), "O1", 10.5, nil}, table.Rows[0])
	require.Equal(t, []any{nil, "O2", nil, created}, table.Rows[1])
	require.Equal(t, []any{nil, "O3", int32(3), nil}, table.Rows[2])
}

func TestDocumentsTableEmpty(t *testing.T) {
	table := documentsTable(nil)
	require.Empty(t, table.Columns)
	require.Zero(t, table.Len())
}

func TestDocumentValueNested(t *testing.T) {
	require.Equal(t, `{"product_id":4507,"subtotal":12.5}`, documentValue(bson.D{
		{Key: "product_id", Value: int32(4507)},
		{Key: "subtotal", Value: 12.5},
	}))
	require.Equal(t, `[1,"x"]`, documentValue(bson.A{int32(1), "x"}))

	decimal, err := primitive.ParseDecimal128("12.50")
	require.NoError(t, err)
	require.Equal(t, "12.50", documentValue(decimal))
	require.Equal(t, int64(7), documentValue(int64(7)))
}

func TestMongoRejectsRelational(t *testing.T) {
	instance := &InstanceMongo{}
	_, err := instance.Execute(context.Background(), RelationalQuery{Statement: "SELECT 1"})
	require.ErrorContains(t, err, "can't execute")
}

package main

import "go.mongodb.org/mongo-driver/bson"

// T-R workload: the same four access patterns expressed once per engine.
var tasksTrMysql = []Task{
	{
		Name: "T-R1_denorm_scan",
		Query: RelationalQuery{Statement: `SELECT SUM(o.total_price) AS total_revenue,
COUNT(*) AS num_orderes FROM ` + "`Order`" + ` o WHERE o.total_price > 0;`},
	},
	{
		Name: "T-R2_single_order",
		Query: RelationalQuery{Statement: `SELECT
    o.order_id,
    o.customer_id,
    o.total_price
FROM ` + "`Order`" + ` o
WHERE o.order_id = (
    SELECT order_id FROM ` + "`Order`" + ` LIMIT 1
);`},
	},
	{
		Name: "T-R3_join_revenue",
		Query: RelationalQuery{Statement: `SELECT
    product_id,
    SUM(price) AS total_revenue
FROM Order_line
GROUP BY product_id
ORDER BY total_revenue DESC;`},
	},
	{
		Name: "T-R4_index_filter",
		Query: RelationalQuery{Statement: `SELECT DISTINCT
    o.order_id
FROM Order_line ol
JOIN ` + "`Order`" + ` o ON o.order_id = ol.order_id
WHERE ol.product_id = (
    SELECT product_id FROM Product LIMIT 1
);`},
	},
}

var tasksTrMongo = []Task{
	{
		Name: "M1_TR1_denormalized_scan",
		Query: PipelineQuery{Collection: "orders", Stages: []bson.D{
			{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: nil},
				{Key: "total_revenue", Value: bson.D{{Key: "$sum", Value: "$total_price"}}},
				{Key: "num_orders", Value: bson.D{{Key: "$sum", Value: 1}}},
			}}},
			{{Key: "$project", Value: bson.D{
				{Key: "_id", Value: 0},
				{Key: "total_revenue", Value: 1},
				{Key: "num_orders", Value: 1},
			}}},
		}},
	},
	{
		Name: "M2_TR2_single_order_lookup",
		Query: PipelineQuery{Collection: "orders", Stages: []bson.D{
			{{Key: "$match", Value: bson.D{{Key: "order_id", Value: bson.D{{Key: "$exists", Value: true}}}}}},
			{{Key: "$limit", Value: 1}},
		}},
	},
	{
		Name: "M3_TR3_join_like_unwind",
		Query: PipelineQuery{Collection: "orders", Stages: []bson.D{
			{{Key: "$unwind", Value: "$order_line"}},
			{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: "$order_line.product_id"},
				{Key: "total_revenue", Value: bson.D{{Key: "$sum", Value: "$order_line.subtotal"}}},
			}}},
			{{Key: "$project", Value: bson.D{
				{Key: "_id", Value: 0},
				{Key: "product_id", Value: "$_id"},
				{Key: "total_revenue", Value: 1},
			}}},
			{{Key: "$sort", Value: bson.D{{Key: "total_revenue", Value: -1}}}},
		}},
	},
	{
		Name: "M4_TR4_filter_by_product",
		Query: PipelineQuery{Collection: "orders", Stages: []bson.D{
			{{Key: "$unwind", Value: "$order_line"}},
			{{Key: "$match", Value: bson.D{{Key: "order_line.product_id", Value: bson.D{{Key: "$exists", Value: true}}}}}},
			{{Key: "$limit", Value: 100}},
		}},
	},
}

func catalogTrMysql() *Catalog {
	return &Catalog{
		Name:        "tr",
		Engine:      EngineMysql,
		Tasks:       tasksTrMysql,
		DefaultRuns: DefaultRunsPerTask,
		TaskRuns:    map[string]int{},
		Namespace:   SuffixNamespace{Base: "ecommerce"},
	}
}

func catalogTrMongo() *Catalog {
	return &Catalog{
		Name:        "tr",
		Engine:      EngineMongo,
		Tasks:       tasksTrMongo,
		DefaultRuns: DefaultRunsPerTask,
		TaskRuns:    map[string]int{},
		Namespace:   mongoNamespaces,
	}
}

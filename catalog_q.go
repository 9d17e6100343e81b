package main

import "go.mongodb.org/mongo-driver/bson"

var tasksQMysql = []Task{
	{Name: "Q1_scan_orders", Query: RelationalQuery{Statement: "SELECT o.order_id, o.customer_id, o.total_price FROM `Order` o;"}},
	{Name: "Q2_count_orders", Query: RelationalQuery{Statement: "SELECT COUNT(*) AS total_orders FROM `Order`;"}},
	{Name: "Q3_orders_by_product", Query: RelationalQuery{Statement: `SELECT DISTINCT o.order_id
FROM ` + "`Order`" + ` o
JOIN Order_line ol ON o.order_id = ol.order_id
WHERE ol.product_id = (SELECT product_id FROM Order_line LIMIT 1);`}},
	{Name: "Q4_order_details", Query: RelationalQuery{Statement: `SELECT o.order_id, o.customer_id, ol.product_id, ol.price
FROM ` + "`Order`" + ` o
JOIN Order_line ol ON o.order_id = ol.order_id
WHERE o.order_id = (SELECT order_id FROM ` + "`Order`" + ` LIMIT 1);`}},
	{Name: "Q5_orders_without_expensive_items", Query: RelationalQuery{Statement: `SELECT o.order_id
FROM ` + "`Order`" + ` o
WHERE NOT EXISTS (
    SELECT 1 FROM Order_line ol WHERE ol.order_id = o.order_id AND ol.price > 1000
);`}},
	{Name: "Q6_orders_per_customer", Query: RelationalQuery{Statement: "SELECT o.customer_id, COUNT(*) AS total_orders FROM `Order` o GROUP BY o.customer_id;"}},
}

var tasksQMongo = []Task{
	{
		Name: "Q1_scan_orders",
		Query: PipelineQuery{Collection: "orders", Stages: []bson.D{
			{{Key: "$project", Value: bson.D{
				{Key: "_id", Value: 0},
				{Key: "order_id", Value: 1},
				{Key: "customer_id", Value: 1},
				{Key: "total_price", Value: 1},
			}}},
		}},
	},
	{
		Name: "Q2_count_orders",
		Query: PipelineQuery{Collection: "orders", Stages: []bson.D{
			{{Key: "$count", Value: "total_orders"}},
		}},
	},
	{
		Name: "Q3_orders_by_product",
		Query: PipelineQuery{Collection: "orders", Stages: []bson.D{
			{{Key: "$match", Value: bson.D{{Key: "order_line.product_id", Value: 4507}}}},
			{{Key: "$project", Value: bson.D{{Key: "_id", Value: 0}, {Key: "order_id", Value: 1}}}},
		}},
	},
	{
		Name: "Q4_order_details",
		Query: PipelineQuery{Collection: "orders", Stages: []bson.D{
			{{Key: "$match", Value: bson.D{{Key: "order_id", Value: "O1"}}}},
			{{Key: "$unwind", Value: "$order_line"}},
			{{Key: "$project", Value: bson.D{
				{Key: "_id", Value: 0},
				{Key: "order_id", Value: 1},
				{Key: "customer_id", Value: 1},
				{Key: "product_id", Value: "$order_line.product_id"},
				{Key: "unit_price", Value: "$order_line.unit_price"},
				{Key: "quantity", Value: "$order_line.quantity"},
				{Key: "subtotal", Value: "$order_line.subtotal"},
			}}},
		}},
	},
	{
		Name: "Q5_orders_without_expensive_items",
		Query: PipelineQuery{Collection: "orders", Stages: []bson.D{
			{{Key: "$match", Value: bson.D{{Key: "order_line", Value: bson.D{
				{Key: "$not", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
					{Key: "unit_price", Value: bson.D{{Key: "$gt", Value: 1000}}},
				}}}},
			}}}}},
			{{Key: "$project", Value: bson.D{{Key: "_id", Value: 0}, {Key: "order_id", Value: 1}}}},
		}},
	},
	{
		Name: "Q6_orders_per_customer",
		Query: PipelineQuery{Collection: "orders", Stages: []bson.D{
			{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: "$customer_id"},
				{Key: "total_orders", Value: bson.D{{Key: "$sum", Value: 1}}},
			}}},
			{{Key: "$project", Value: bson.D{
				{Key: "_id", Value: 0},
				{Key: "customer_id", Value: "$_id"},
				{Key: "total_orders", Value: 1},
			}}},
		}},
	},
}

func catalogQMysql() *Catalog {
	return &Catalog{
		Name:        "q",
		Engine:      EngineMysql,
		Tasks:       tasksQMysql,
		DefaultRuns: DefaultRunsPerTask,
		TaskRuns:    map[string]int{},
		Namespace:   SuffixNamespace{Base: "ecommerce"},
	}
}

func catalogQMongo() *Catalog {
	return &Catalog{
		Name:        "q",
		Engine:      EngineMongo,
		Tasks:       tasksQMongo,
		DefaultRuns: DefaultRunsPerTask,
		TaskRuns:    map[string]int{},
		Namespace:   mongoNamespaces,
	}
}

package models

// All returns every persistence model in dependency order, for schema
// creation on databases that are not managed by SQL migrations
func All() []any {
	return []any{
		&CategoryModel{},
		&ProductModel{},
		&ProductImageModel{},
		&ProductVariantModel{},
		&OrderModel{},
		&OrderItemModel{},
		&AdminUserModel{},
		&CartSnapshotModel{},
	}
}

// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: base persistence models (BaseModel, AggregateModel)
// - catalog.go: categories, products, product images and variants
// - trade.go: orders and order items
// - identity.go: admin users
// - cart.go: persisted cart snapshots
package models

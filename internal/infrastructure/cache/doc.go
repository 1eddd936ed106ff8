// Package cache holds the redis connection shared by the storefront's
// short-lived state (cart snapshots, revoked tokens, delivered
// notifications) and the idempotency stores used by event handlers.
package cache

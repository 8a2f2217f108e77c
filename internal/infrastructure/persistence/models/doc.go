// Package models contains GORM persistence models that map to database tables.
// They are kept apart from the domain types; each model has FromDomain and
// ToDomain mappers and repositories only ever hand domain values to callers.
//
// Structure:
// - base.go: shared audit columns
// - catalog.go: product master, sales listings, inventory
// - order.go: orders and shipments
package models

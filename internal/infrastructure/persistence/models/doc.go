// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain types to keep the domain layer free of ORM concerns.
//
// The local store holds a single key/value table (SettingModel) for the surcharge
// table, the gain fallback cache and the size override cache.
package models

// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel and AggregateModel shared by every table
//   - barcode.go: barcodes table
//   - printing.go: print_jobs table
//
// Repositories load models and convert them with ToDomain; writes go through
// the *FromDomain constructors.
package models

// Package models contains the GORM persistence models for the ledger tables.
// Domain entities carry no ORM tags; each model converts to and from its
// domain type with ToDomain and FromDomain.
package models

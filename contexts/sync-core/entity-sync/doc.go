// Package entitysync contains the Meridian bidirectional entity
// synchronization engine.
//
// Per registered entity type the engine pushes locally-unsynced records to
// the central authority and pulls recently-changed remote records, applying
// a last-writer-wins merge on the record's updated timestamp. Cycles for
// different entity types run concurrently and fail independently.
package entitysync

// Package outboxdispatch contains the Meridian transactional outbox ledger
// and its delivery worker.
//
// Producers append OutboxMessage rows inside their own database transaction;
// the dispatcher drains the ledger in occurrence order, publishes to the
// configured event publisher and fans processed events out to live
// subscriber groups. Rows are never deleted: the ledger doubles as an audit
// and replay log.
package outboxdispatch

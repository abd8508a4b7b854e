// Package repository handles all interactions with the database.
//
// It contains the SQL for stores, the currency catalog and admin users.
// Every repository is bound to a DBTX and can be rebound to a transaction
// with WithTx, so services decide where transaction boundaries fall.
// Missing rows come back as pgx.ErrNoRows wrapped with the table name.
package repository

// Package service holds the business rules of the admin API.
//
// Handlers hand it validated input; it decides what the rules allow and
// drives the repositories. A service bound to a transaction through WithTx
// runs every repository call on that transaction.
package service

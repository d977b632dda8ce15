// Package services holds the GradeKeeper use cases: login and account
// creation, the one-time-code password reset, and grade entry and listing.
//
// Every operation except Login takes the caller's authenticated
// models.Identity, asks access control first, then reads or mutates the
// credential store and persists it.
package services

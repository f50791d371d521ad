// Package models defines the domain model shared by the sync engine,
// the backend client, and the persistence layer.
//
// The two status enumerations ([Status] and [FormattingStatus]) are parsed
// from wire strings at the services boundary; unrecognized values map to the
// Unknown members so the state machine never sees a raw string it cannot
// classify.
package models

// Package models defines the core domain models for PayHive.
//
// # Ledger Models
//
// The settlement engine works on three entities:
//   - Group: a set of members who share expenses
//   - Member: one user's identity inside a group
//   - Expense: a shared cost that must be approved by a quorum of members
//
// Settlement is a derived value: it is recomputed from authorized expenses
// every time balances are requested and is never stored as ledger truth.
//
// # Supporting Models
//
//   - User: identity provider record used to populate members
//   - Payment: execution history of one settlement attempt on a payment rail
//
// # Design Principles
//
// 1. **Aggregates**: a Group owns its Members and Expenses and is persisted as one document
// 2. **Append-only members**: members are never removed, so past expenses stay valid
// 3. **IDs over pointers**: relationships use ID strings
// 4. **JSON-friendly**: all models carry JSON tags; timestamps round-trip as RFC 3339
package models

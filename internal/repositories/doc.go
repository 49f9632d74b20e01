// Package repositories implements SQLite persistence for the signed-in account.
//
// Key Implementations:
//   - [PreferenceStore] : the two-key account preference store (account_name, account_type) with an
//     atomic multi-key write and a watch stream used to restore the session at startup
//   - [TokenRepository] : OAuth tokens per account, standing in for a platform account manager so the
//     playlist fetcher can authorize requests for a restored identity
//
// Writes touching more than one row always go through a single transaction, so readers never observe a
// half-written account.
package repositories

// Package repositories provides the token persistence backends.
//
// Every backend implements [Store] and holds at most one [models.Token], the credential of the single
// logged-in account. A missing token is reported as [shared.ErrNoToken].
//
//   - [TokenRepository] : SQLite table managed by the embedded migrations
//   - [FileTokenStore] : TOML file, written atomically with 0600 permissions
//   - [MemoryTokenStore] : Process-local, lost on exit
//
// [Open] selects the backend named in the storage section of the configuration.
package repositories

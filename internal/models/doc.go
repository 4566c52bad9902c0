// Package models defines the domain values shared by the OAuth client, the Spotify service, the genre
// aggregation, and every presentation surface.
//
// The package contains two categories of types:
//
// 1. Session state
//   - [Token] : Access/refresh token pair with an absolute expiry; the only persisted value
//   - [AuthState] : Where the single session is in the authorization-code flow
//
// 2. Listening statistics, sourced verbatim from the provider or derived from it
//   - [Track] : A top track with its first-listed artists, album artwork and preview clip
//   - [Artist] : A top artist with the provider's free-text genre tags
//   - [GenreCount] : A genre tag and how many top artists carry it
//   - [Profile] : The authenticated account
//   - [TimeRange] : The provider's short/medium/long term statistics window
package models

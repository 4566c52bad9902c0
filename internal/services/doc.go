// Package services talks to the Spotify accounts service and Web API.
//
// # Authorization
//
// [OAuthClient] drives the authorization-code flow:
//
//	Unauthenticated -> AwaitingCallback -> Authenticated
//
// [BuildAuthorizationURL] is pure. [OAuthClient.BeginLogin] generates a state value and waits for either the local
// callback server ([OAuthClient.CompleteLogin]) or a pasted redirect URL ([OAuthClient.Exchange]). Tokens are kept
// in a [TokenStore] and [OAuthClient.ValidToken] refreshes them only once they have expired. A failed refresh
// clears the store and the user has to log in again.
//
// # Statistics
//
// [SpotifyService] implements [StatsService] over the Web API endpoints:
//   - GET /me/top/tracks
//   - GET /me/top/artists
//   - GET /me
//
// Requests are throttled with a token-bucket limiter and rate-limited or transient failures are retried with
// exponential backoff that honours Retry-After.
//
// # Error Handling
//
// Failures are [AuthError] or [APIError] values that unwrap to a sentinel from the shared package:
//   - [shared.ErrMissingConfig] : credentials incomplete
//   - [shared.ErrMalformedCallback] : callback without a code, or a state mismatch
//   - [shared.ErrExchangeRejected] : token endpoint refused the code
//   - [shared.ErrSessionExpired] : refresh failed, login required
//   - [shared.ErrNotAuthenticated] : no token stored yet
//   - [shared.ErrUnauthorized] : API rejected the access token
//   - [shared.ErrRateLimited] : HTTP 429
//   - [shared.ErrTransient] : network failure, timeout or 502/503/504
//   - [shared.ErrUnexpected] : any other failure
//
// [ErrorKind] gives each a stable name for logs and JSON responses.
package services

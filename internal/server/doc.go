// Package server provides HTTP routing, middleware, the OAuth callback handler and the web dashboard.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Recover] and [Logging] are the two the dashboard installs.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /api/me"), so a known path
// requested with the wrong method answers 405.
//
// # Server Lifecycle
//
// [Listen] binds the address up front so a port conflict is reported before anything is served. [Server.Run]
// serves until its context is cancelled and then shuts down gracefully.
//
// # OAuth Callback Handler
//
// [CallbackHandler] completes the authorization started by the CLI. It hands the redirect URL to a
// [LoginCompleter], which validates state and exchanges the code, and delivers exactly one [CallbackResult].
// Later requests are rejected to prevent replay.
//
// # Dashboard
//
// [Dashboard] serves the same statistics as the CLI and TUI:
//
//	GET  /                  themed HTML page (?view=tracks|artists|genres&range=short|medium|long&theme=)
//	GET  /login             redirect to the provider's consent page
//	GET  /callback          complete the login and redirect home (the redirect URI's path)
//	POST /logout            clear the session
//	GET  /api/status        session state and token expiry
//	GET  /api/me            profile
//	GET  /api/top/tracks    ?limit=1..50&range=
//	GET  /api/top/artists   ?limit=1..50&range=
//	GET  /api/top/genres    genres of the top 50 artists, ?limit= caps the list (default 10)
//
// Failures are JSON bodies of the form {"error": kind, "message": text}, where kind is
// [services.ErrorKind]. Session errors answer 401, rate limiting 429 with Retry-After, transient provider
// failures 503 and bad query parameters 400.
package server

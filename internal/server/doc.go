// Package server provides HTTP routing, middleware, and the OAuth callback listener used by browser sign-in.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [RequestLogger] and [Recoverer] are the middleware the callback server runs with.
//
// [BasicRouter] registers method-qualified [http.ServeMux] patterns, so the callback only answers GET.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the redirect side of the OAuth2 authorization code flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel. It only processes one callback to prevent replay attacks.
//
// # Loopback Server
//
// [Server] binds before serving, so a sign-in can listen on port 0, build its redirect URL from the real
// address, open the browser, and shut the listener down as soon as the callback has been handled.
package server

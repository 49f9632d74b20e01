// Package auth signs a user in to Google and commits the result to the session.
//
// # Methods
//
// Three mechanisms produce an [Outcome]:
//
//   - browser ([MethodLegacy]): authorization code flow with PKCE. A loopback listener from the server package
//     receives the redirect.
//   - device ([MethodOneTap]): OAuth device authorization grant. The user code is shown through a [Prompter].
//   - credential ([MethodCredential]): a stored credential from a [Broker], e.g. [FileBroker].
//
// Each Start function begins a session attempt, runs its mechanism under a deadline and hands the outcome to a
// single commit step. Successful sign-ins are written to the [AccountStore] and [TokenStore]; failures are
// recorded on the session and never retried.
//
// # Identity
//
// The identity is read from the ID token (see [ParseIDToken]). Browser sign-ins use the "com.google" account
// type, the other two use the configured application account type.
package auth

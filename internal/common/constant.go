// Package common contains shared constants and sentinel errors used across
// gophaccount components.
package common

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "session_id"

// ResetLinkPath is appended to the public base URL when building password
// reset links.
const ResetLinkPath = "/reset-password"

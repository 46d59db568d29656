// Package auth provides authentication and authorization for entrydesk.
//
// # Sessions
//
// Signing in issues an HS256 JWT (github.com/golang-jwt/jwt/v5) whose subject is
// the account ID. The browser holds it in an HttpOnly cookie; scripts may send
// the same token as "Authorization: Bearer <token>". The secret must be at
// least MinSecretLength bytes.
//
// # Capabilities
//
// Access control follows WordPress: every account has a role and every role
// grants a fixed set of capabilities.
//
//	administrator  read, manage_options, export
//	editor         read, export
//	subscriber     read
//
// Menu pages and action endpoints each declare the one capability they
// require; Identity.Can answers the check.
//
// # Passwords
//
// Passwords are hashed with bcrypt. CheckPassword performs a dummy comparison
// for accounts without a hash so login timing does not leak usernames.
package auth

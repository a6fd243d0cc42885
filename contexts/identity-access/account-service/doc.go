// Package account implements the account service inside the identity-access
// context: user accounts, bearer tokens, principal resolution and the
// user-authority policy.
//
// Layering:
// - domain: user entity, authority policy, errors
// - application: commands/queries using explicit ports
// - ports: stable boundaries for persistence, tokens and credentials
// - adapters: HTTP, memory, postgres, JWT and bcrypt implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Other modules only see callers through contracts/identity/v1.Principal.
// - The single root account is created or corrected by ReconcileRoot at
//   process start, never through the user-management commands.
package account

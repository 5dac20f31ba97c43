// Package mongostore persists users, two-factor state, sessions, login
// attempts and lifecycle tokens in MongoDB.
//
// Two-factor fields are embedded in the user document under "two_factor".
// Token collections carry a TTL index on "expires" whose delay equals the
// grace period, so recently expired tokens stay readable.
package mongostore

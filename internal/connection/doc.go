// Package connection implements the Azure DevOps connection lifecycle:
// acquiring access tokens from Microsoft Entra ID with the OAuth2 client
// credentials grant, validating that the token actually grants access to
// the target organization, and caching the resulting session in process
// memory.
//
// # Components
//
//   - Acquirer: one-shot token requests against the Entra ID token endpoint
//   - Validator: organization reachability probe using the acquired token
//   - Store: single-slot, thread-safe in-memory session cache
//   - Manager: orchestrates validate -> reuse-or-acquire -> probe -> cache
//   - Secret: redacting, wipeable wrapper for client secrets and tokens
//
// # Security
//
// ## Token Storage
//
// Sessions are stored in-memory only and are never persisted to disk. This
// means:
//   - Sessions are lost when the process exits
//   - Callers must reconnect after a restart
//   - No encryption-at-rest is needed since tokens exist only in process memory
//
// ## Credential Handling
//
// Client secrets enter the package wrapped in Secret, which redacts itself
// in every formatting and serialization path. The plaintext is revealed
// only while the token request form is encoded, and Connect wipes the
// caller's secret before returning regardless of outcome. Access tokens
// get the same wrapper inside the cached session; SessionSummary, the only
// type handed back to presentation layers, carries neither.
//
// # Cache Semantics
//
// The cache holds exactly one session. A session is reusable while its
// token expiry lies more than SessionExpiryBuffer in the future and its
// organization, tenant, and client match the requested identity. Reads
// self-heal: an expired or structurally incomplete slot is cleared on
// sight. Writes replace the slot only after acquisition and validation
// both succeed, so a failed reconnect never destroys a working session.
package connection

// Package identity provides party addressing and signature capabilities.
//
// Stable:
//   - Address derivation and parsing, the signing payload digest, and the
//     Verifier interface the ledger consumes.
//
// Experimental:
//   - Filesystem-backed key storage (KeyStore). It is a local-first tooling
//     convenience and not part of the protocol contract.
package identity

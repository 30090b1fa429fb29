// Package constants centralizes defaults shared across the CLI.
//
// File permissions, the default TLS port, and the signaling cipher suite value
// live here so cmd/ and internal/ can reference them without import cycles.
package constants

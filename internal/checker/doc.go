// Package checker runs plugins against operator-supplied targets.
//
// Architecture overview:
//
//   - Checkers implement the Checker interface (Check + Name). PluginChecker
//     adapts any plugin.Plugin: it parses the target, learns the server's
//     highest protocol version and runs the plugin once.
//   - Runner coordinates concurrent execution with rate limiting, invoking
//     an optional AuditFunc per target. Every target is probed independently;
//     a failure on one target is recorded in its CheckResult and never stops
//     the others.
//   - ParseTarget accepts host, host:port, URLs, bracketed IPv6 and the
//     host{ip} form for pinning the address to connect to.
package checker

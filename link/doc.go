// Package link implements the interceptor chain that every operation issued
// through a gqltest client travels along.
//
// A chain is an ordered list of Link values. Each link receives the operation
// and a Forward function that hands it to the rest of the chain. The last link
// must terminate the chain by producing a result itself (Mock, HTTP); if none
// does, the operation fails with ErrNoTerminatingLink.
//
// Inflight is the link that makes deterministic tests possible: it parks each
// operation behind a Handle and reports it to a Sink, so a test controller can
// decide when the operation is allowed to reach the resolver.
package link

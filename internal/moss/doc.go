// Package moss is the caller-facing Moss client: a Session holds the
// comparison settings and the base/submission registries and hands a
// snapshot of them to the protocol transport on Submit.
//
// A Session is meant for one submission. Registries are append-only.
package moss

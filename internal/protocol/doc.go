// Package protocol owns the Moss wire contract and parsing primitives.
//
// Ownership boundary:
// - server endpoint and supported language table
// - handshake, file header and query line encoding
// - language ack and response decoding
package protocol

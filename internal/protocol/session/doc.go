// Package session owns the per-submission Moss transport.
//
// Ownership boundary:
// - one TCP connection per submission, never reused
// - handshake, language ack, file streaming, query, result read
// - per-operation deadlines and context cancellation
//
// Wire order is part of the server contract; every step is a blocking
// write or read on the single connection.
package session

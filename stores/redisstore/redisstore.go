// Package redisstore provides Redis-backed implementations of the message,
// persisted-grant and user-session stores for multi-node deployments. The
// in-memory fakes under the respective repofakes packages remain the
// single-node and test backing.
package redisstore

const (
	messageKeyPrefix = "is:msg:"
	grantKeyPrefix   = "is:grant:"
	sessionKeyPrefix = "is:session:"
)

// Package ward is a local, single-user secret store: named records carry
// fields (user, pass, url, ...), some marked sensitive, queried with a
// boolean filter language and persisted encrypted at rest under a master
// password.
//
// This root package is the facade. Open unlocks (or creates) a vault
// file and returns a live session that accepts the command language:
//
//	sess, err := ward.Open(path, masterPassword)
//	if err != nil { ... }
//
//	sess.Exec("set gmail user = zahash sensitive pass = compromised")
//	sess.Exec("show url contains 'google' and user is zahash")
//	result, _ := sess.Exec("copy gmail pass")
//
// Sensitive values are masked on output unless revealed explicitly, the
// vault file is authenticated ciphertext (a wrong password and a tampered
// file are indistinguishable), and every write lands atomically.
//
// The pieces live in pkg/query (filter language), pkg/vault (records and
// history), pkg/crypt (key derivation and AEAD), pkg/storage (envelope
// and atomic file IO) and pkg/session (the command layer).
package ward

package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainEntry = "atom/entry/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// EntryID computes the identity of a deferred entry.
//
// The ordinal distinguishes several deferred builders created for the same
// key within one category (the second Form("contact") before the checkpoint
// gets ordinal 1). Keys are NFC normalized so visually identical slugs hash
// identically regardless of how the caller composed them.
func EntryID(category Category, key Key, ordinal int) string {
	var buf []byte
	buf = append(buf, norm.NFC.String(string(category))...)
	buf = append(buf, 0x00)
	buf = append(buf, norm.NFC.String(string(key))...)
	buf = append(buf, 0x00)
	buf = strconv.AppendInt(buf, int64(ordinal), 10)
	return hashWithDomain(DomainEntry, buf)
}

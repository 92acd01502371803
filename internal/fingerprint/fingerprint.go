// Package fingerprint computes the content digests the sync engine uses to
// decide whether a buffer changed. Fingerprint equality is the only notion of
// "same content" anywhere in syncpaste.
package fingerprint

import (
	"crypto/md5" //nolint:gosec // change detection only, not a security boundary
	"encoding/hex"
)

// None is the fingerprint of empty content. It never equals a real digest,
// which is always Size hex characters long.
const None = ""

// Size is the length of a non-empty fingerprint in hex characters.
const Size = md5.Size * 2

// Of returns the hex MD5 digest of the UTF-8 bytes of content, or None when
// content is empty. MD5 matches the digests recorded by earlier SyncPaste
// clients, so existing state files keep working.
func Of(content string) string {
	if content == "" {
		return None
	}

	sum := md5.Sum([]byte(content)) //nolint:gosec // see import

	return hex.EncodeToString(sum[:])
}

// Valid reports whether fp looks like a digest produced by Of for non-empty
// content. Used to sanity-check fingerprints read back from storage.
func Valid(fp string) bool {
	if len(fp) != Size {
		return false
	}

	_, err := hex.DecodeString(fp)

	return err == nil
}

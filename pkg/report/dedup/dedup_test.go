package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint("DDN-Nightly-Tests-12", "S3 Cross Tenant", "AccessDenied expected")
	b := Fingerprint("DDN-Nightly-Tests-12", "S3 Cross Tenant", "AccessDenied expected")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFingerprintDistinguishesFields(t *testing.T) {
	base := Fingerprint("build-1", "test", "err")

	assert.NotEqual(t, base, Fingerprint("build-2", "test", "err"))
	assert.NotEqual(t, base, Fingerprint("build-1", "other", "err"))
	assert.NotEqual(t, base, Fingerprint("build-1", "test", "other"))

	// Field boundaries matter: concatenation ambiguity must not collide.
	assert.NotEqual(t, Fingerprint("ab", "c", ""), Fingerprint("a", "bc", ""))
}

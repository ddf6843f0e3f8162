package telemetry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ogonki/streak-api/internal/config"
)

func TestSanitizeUserID(t *testing.T) {
	assert.Equal(t, "", NewSanitizer(PIILevelHashed, "x").SanitizeUserID(0))
	assert.Equal(t, "[REDACTED]", NewSanitizer(PIILevelNone, "x").SanitizeUserID(42))
	assert.Equal(t, "42", NewSanitizer(PIILevelFull, "x").SanitizeUserID(42))

	hashed := NewSanitizer(PIILevelHashed, "x")
	first := hashed.SanitizeUserID(42)
	assert.Len(t, first, 12)
	assert.Equal(t, first, hashed.SanitizeUserID(42), "digest must be stable")
	assert.NotEqual(t, first, NewSanitizer(PIILevelHashed, "y").SanitizeUserID(42), "salt must change the digest")
}

func TestSanitizeHandle(t *testing.T) {
	assert.Equal(t, "alice", NewSanitizer(PIILevelFull, "x").SanitizeHandle("@Alice"))
	assert.Equal(t, "[REDACTED]", NewSanitizer(PIILevelNone, "x").SanitizeHandle("alice"))
	assert.Equal(t, "", NewSanitizer(PIILevelNone, "x").SanitizeHandle(""))

	hashed := NewSanitizer(PIILevelHashed, "x")
	assert.NotContains(t, hashed.SanitizeHandle("alice"), "alice")
	assert.Equal(t, hashed.SanitizeHandle("alice"), hashed.SanitizeHandle("@ALICE"))
}

func TestSanitizeText(t *testing.T) {
	s := NewSanitizer(PIILevelHashed, "salt")

	assert.Equal(t, "/streaks", s.SanitizeText("/streaks"))
	assert.Equal(t, "", s.SanitizeText(""))

	invite := s.SanitizeText("@Alice")
	assert.Equal(t, "@"+s.SanitizeHandle("alice"), invite, "text and field digests must match")

	accept := s.SanitizeText("/accept @bob_smith")
	assert.True(t, strings.HasPrefix(accept, "/accept @"), accept)
	assert.NotContains(t, accept, "bob_smith")

	phone := s.SanitizeText("call me +7 (912) 345-67-89")
	assert.Contains(t, phone, "[phone:")
	assert.NotContains(t, phone, "345-67-89")

	assert.Equal(t, "[REDACTED]", NewSanitizer(PIILevelNone, "salt").SanitizeText("hello"))
	assert.Equal(t, "/start", NewSanitizer(PIILevelNone, "salt").SanitizeText("/start"))
	assert.Equal(t, "hello @bob", NewSanitizer(PIILevelFull, "salt").SanitizeText("hello @bob"))
}

func TestNewSanitizerFromConfig(t *testing.T) {
	cfg := &config.Config{ServiceName: "streak-api", Environment: "prod", LogPIILevel: "HASHED"}
	s := NewSanitizerFromConfig(cfg)

	assert.Equal(t, PIILevelHashed, s.level)
	assert.Equal(t, NewSanitizer(PIILevelHashed, "streak-api:prod").SanitizeUserID(7), s.SanitizeUserID(7))
}

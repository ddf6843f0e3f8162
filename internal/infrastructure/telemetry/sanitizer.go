package telemetry

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"

	"github.com/ogonki/streak-api/internal/config"
)

// PIILevel defines how much Telegram user data reaches logs and spans.
type PIILevel string

const (
	PIILevelNone   PIILevel = "none"
	PIILevelHashed PIILevel = "hashed"
	PIILevelFull   PIILevel = "full"
)

const (
	redactedValue = "[REDACTED]"
	digestLen     = 12
)

var (
	handleInText = regexp.MustCompile(`@[A-Za-z0-9_]{3,32}`)
	phoneInText  = regexp.MustCompile(`\+?\d[\d\s()-]{8,}\d`)
)

// Sanitizer masks Telegram identities and chat text before they are logged.
// At the hashed level the same account yields the same digest whether it is
// seen as a handle field or inside message text.
type Sanitizer struct {
	level PIILevel
	key   []byte
}

// NewSanitizer creates a sanitizer; salt keys the digests per deployment.
func NewSanitizer(level PIILevel, salt string) *Sanitizer {
	return &Sanitizer{level: level, key: []byte(salt)}
}

// NewSanitizerFromConfig builds the sanitizer for LOG_PII_LEVEL, keyed by
// service and environment.
func NewSanitizerFromConfig(cfg *config.Config) *Sanitizer {
	return NewSanitizer(PIILevel(strings.ToLower(cfg.LogPIILevel)), cfg.ServiceName+":"+cfg.Environment)
}

// SanitizeUserID masks a Telegram user or chat id. Zero means absent.
func (s *Sanitizer) SanitizeUserID(id int64) string {
	if id == 0 {
		return ""
	}
	return s.mask(strconv.FormatInt(id, 10))
}

// SanitizeHandle masks a username, with or without its leading @.
func (s *Sanitizer) SanitizeHandle(handle string) string {
	handle = strings.ToLower(strings.TrimPrefix(handle, "@"))
	if handle == "" {
		return ""
	}
	return s.mask(handle)
}

// SanitizeText masks a chat message. A bare slash command is kept verbatim:
// it carries no user data and is what operators search for.
func (s *Sanitizer) SanitizeText(text string) string {
	if text == "" || isBareCommand(text) || s.level == PIILevelFull {
		return text
	}
	if s.level == PIILevelNone {
		return redactedValue
	}

	// phones first, so digests written for handles are not rescanned
	text = phoneInText.ReplaceAllStringFunc(text, func(m string) string {
		return "[phone:" + s.digest(digitsOnly(m)) + "]"
	})
	return handleInText.ReplaceAllStringFunc(text, func(m string) string {
		return "@" + s.digest(strings.ToLower(m[1:]))
	})
}

func (s *Sanitizer) mask(raw string) string {
	switch s.level {
	case PIILevelFull:
		return raw
	case PIILevelNone:
		return redactedValue
	default:
		return s.digest(raw)
	}
}

func (s *Sanitizer) digest(v string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(v))
	return hex.EncodeToString(mac.Sum(nil))[:digestLen]
}

func isBareCommand(text string) bool {
	return strings.HasPrefix(text, "/") && !handleInText.MatchString(text) && !phoneInText.MatchString(text)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

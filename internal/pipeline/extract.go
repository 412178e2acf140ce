package pipeline

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
)

const (
	PlatformOpenTable = "opentable"
	PlatformResy      = "resy"
	PlatformUnknown   = "unknown"

	// DefaultRestaurantName is used when the body has no "at " marker
	DefaultRestaurantName = "Test Restaurant"

	reservationIDPrefix = "RES"
	testIDPrefix        = "TEST"
	restaurantMarker    = "at "
)

var platformDomains = []struct {
	domain   string
	platform string
}{
	{"opentable.com", PlatformOpenTable},
	{"resy.com", PlatformResy},
}

// EmailHash returns the Keccak-256 digest of from, subject and body
// concatenated, as "0x" followed by 64 hex digits.
func EmailHash(from, subject, body string) string {
	return keccakHex(from + subject + body)
}

// TestProofHash returns the email hash used for proofs seeded through the
// test endpoint.
func TestProofHash(platform, restaurantName string) string {
	return keccakHex(platform + "-" + restaurantName + "-test")
}

func keccakHex(s string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(s))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// ExtractPlatform guesses the reservation platform from the sender address
func ExtractPlatform(from string) string {
	from = strings.ToLower(from)
	for _, d := range platformDomains {
		if strings.Contains(from, d.domain) {
			return d.platform
		}
	}
	return PlatformUnknown
}

// ExtractRestaurantName returns the text following the first "at " in body,
// up to the end of that line or the next "at ". ok is false when the marker
// is missing or nothing follows it.
func ExtractRestaurantName(body string) (name string, ok bool) {
	_, rest, found := strings.Cut(body, restaurantMarker)
	if !found {
		return "", false
	}
	if i := strings.Index(rest, restaurantMarker); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}

	name = strings.TrimSpace(rest)
	return name, name != ""
}

func synthesizeID(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.New().String()[:8])
}

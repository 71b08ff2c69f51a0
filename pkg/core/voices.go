package core

import "strings"

// DefaultVoice is used whenever no valid voice is configured.
const DefaultVoice = "Puck"

// VoiceNames is the fixed set of prebuilt voices the service accepts.
var VoiceNames = []string{
	"Puck",
	"Charon",
	"Kore",
	"Fenrir",
	"Aoede",
	"Leda",
	"Orus",
	"Zephyr",
}

// ValidVoice reports whether name is one of the prebuilt voices.
// Matching is case-insensitive; the canonical spelling is what counts.
func ValidVoice(name string) bool {
	name = strings.TrimSpace(name)
	for _, v := range VoiceNames {
		if strings.EqualFold(v, name) {
			return true
		}
	}
	return false
}

// CanonicalVoice returns the canonical spelling for name, or DefaultVoice
// when name is not in the voice set.
func CanonicalVoice(name string) string {
	name = strings.TrimSpace(name)
	for _, v := range VoiceNames {
		if strings.EqualFold(v, name) {
			return v
		}
	}
	return DefaultVoice
}

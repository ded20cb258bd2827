package mwalimu

import (
	"encoding/json"
	"strings"
)

// Generated answers are requested in an explicit two-section layout:
//
//	ENGLISH:
//	[text]
//	SWAHILI:
//	[text]
//
// ParseBilingual coerces whatever the model actually produced into a
// complete BilingualAnswer at the boundary, so loosely-shaped upstream
// output never flows further into the orchestrator.

const (
	englishMarker = "ENGLISH:"
	swahiliMarker = "SWAHILI:"
)

// ParseBilingual extracts the English and Swahili halves of generated text.
// When the Swahili half is missing or empty, SwahiliFallback is substituted;
// the returned answer always has both fields populated (except for fully
// empty input, which yields two empty-ish fields the caller handles).
func ParseBilingual(raw string) BilingualAnswer {
	text := strings.TrimSpace(raw)
	if text == "" {
		return BilingualAnswer{English: "", Swahili: SwahiliFallback}
	}

	// Explicit ENGLISH:/SWAHILI: sections.
	if strings.Contains(text, englishMarker) && strings.Contains(text, swahiliMarker) {
		parts := strings.SplitN(text, swahiliMarker, 2)
		english := strings.TrimSpace(strings.Replace(parts[0], englishMarker, "", 1))
		swahili := ""
		if len(parts) > 1 {
			swahili = strings.TrimSpace(parts[1])
		}
		if swahili == "" {
			swahili = SwahiliFallback
		}
		return BilingualAnswer{English: english, Swahili: swahili}
	}

	// Some models answer in JSON despite the format instructions.
	var obj struct {
		English string `json:"english"`
		Swahili string `json:"swahili"`
	}
	if err := json.Unmarshal([]byte(text), &obj); err == nil && obj.English != "" {
		swahili := strings.TrimSpace(obj.Swahili)
		if swahili == "" {
			swahili = SwahiliFallback
		}
		return BilingualAnswer{English: strings.TrimSpace(obj.English), Swahili: swahili}
	}

	// Last resort: treat the whole output as English.
	return BilingualAnswer{English: text, Swahili: SwahiliFallback}
}

package extract

import "strings"

// challengeBodyLimit is the body size under which a security keyword is
// treated as a challenge page. Real listing pages are far larger; challenge
// interstitials are small shells.
const challengeBodyLimit = 8 * 1024

var challengeKeywords = []string{
	"captcha",
	"cloudflare",
	"access denied",
	"request blocked",
	"verify you are human",
	"pardon our interruption",
	"unusual traffic",
	"security check",
}

// DetectChallenge checks a response body for signs of anti-automation
// blocking: a short body combined with a security keyword. Returns the
// matched keyword.
func DetectChallenge(body []byte) (string, bool) {
	if len(body) == 0 || len(body) >= challengeBodyLimit {
		return "", false
	}
	lower := strings.ToLower(string(body))
	for _, kw := range challengeKeywords {
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}

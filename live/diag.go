package live

import "log"

// maxLoggedRaw caps how much of a malformed wire message makes it into
// diagnostics. Malformed frames can embed whole base64 media payloads; logging
// them unbounded would flood the log.
const maxLoggedRaw = 200

// ErrorRecorder receives decode diagnostics. It must not block; the parser
// treats it as fire-and-forget.
type ErrorRecorder func(msg string)

// defaultRecorder writes diagnostics through the standard logger.
func defaultRecorder(msg string) {
	log.Printf("⚠️ live: %s", msg)
}

// truncate caps s at n characters, marking the cut with an ellipsis. The cap
// counts runes, not bytes, so non-ASCII text keeps its full budget and the
// excerpt is never cut mid-rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

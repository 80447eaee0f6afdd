package logger

import "strings"

// RedactEmail masks a lead's or campaign owner's email address for safe
// logging — every send, bounce, and reply path routes the recipient through
// this before it reaches logger.Info/Warn/Error.
// "jane.doe@acme.com" → "ja***@acme.com"
// Short local parts (≤2 chars) are fully masked: "jo@acme.com" → "***@acme.com"
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}

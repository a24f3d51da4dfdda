package wisdom

import "regexp"

// The redaction chain runs in a fixed order: identifiers first, then
// paths, then credential assignments, then the catch-all for long bare
// tokens. The token catch-all must run last or it would swallow
// material the earlier, more specific rules label precisely.
var redactions = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	// Email addresses.
	{regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`), "[redacted-email]"},
	// Absolute Unix paths.
	{regexp.MustCompile(`(?:/[\w.-]+){2,}/?`), "[path]"},
	// Relative paths.
	{regexp.MustCompile(`\.{1,2}/[\w./-]+`), "[path]"},
	// Windows paths.
	{regexp.MustCompile(`[A-Za-z]:\\[\w\\.\- ]+`), "[path]"},
	// Credential assignments.
	{regexp.MustCompile(`(?i)\b(key|secret|token|password|api_key|auth_token)\s*[:=]\s*\S+`), "$1=[redacted]"},
	// User identifier assignments.
	{regexp.MustCompile(`(?i)\b(username|user_id|user_name)\s*[:=]\s*\S+`), "$1=[redacted]"},
	// Bare alphanumeric runs long enough to be tokens or secrets.
	{regexp.MustCompile(`\b[A-Za-z0-9]{32,}\b`), "[redacted-token]"},
}

// StripSensitiveData returns a copy of the node with personally
// identifying and credential-shaped material redacted from the content.
// The input node is never mutated.
func StripSensitiveData(node GraphNode) GraphNode {
	out := node
	content := node.Content
	for _, r := range redactions {
		content = r.pattern.ReplaceAllString(content, r.replacement)
	}
	out.Content = content

	if node.Tags != nil {
		out.Tags = append([]string(nil), node.Tags...)
	}
	return out
}

package scan

import (
	"strings"

	"github.com/credsweep/credsweep/pkg/patterns"
)

const (
	// windowLookbehind and windowLookahead bound the slice of a line handed
	// to the regex around each prefix hit. The lookbehind covers assignment
	// style patterns whose regex starts before the literal prefix.
	windowLookbehind = 50
	windowLookahead  = 500

	// LargeLineThreshold is the line length past which low-specificity rules
	// (JWTs, generic secret assignments) are skipped entirely.
	LargeLineThreshold = 50000
)

// Hit is one detected token within a piece of text.
type Hit struct {
	Pattern *patterns.TokenPattern
	Token   string
}

// ScanLine scans a single transcript line using the windowed strategy:
// locate each rule's literal prefix with a plain substring search, then run
// the full regex only against a bounded window around the hit. Results are
// deduplicated by matched substring and filtered against the false-positive
// list. Transcript lines can be multi-megabyte JSON blobs; this keeps the
// regex engine off the full line.
func ScanLine(line string) []Hit {
	patterns.CompilePatterns()

	var hits []Hit
	seen := make(map[string]bool)
	largeLine := len(line) > LargeLineThreshold

	// Lowered copy of the line, built only if a case-insensitive rule runs.
	var lowered string

	for i := range patterns.ScanRules {
		rule := &patterns.ScanRules[i]
		if largeLine && !rule.LargeLineSafe {
			continue
		}

		haystack := line
		if rule.FoldCase {
			if lowered == "" {
				lowered = asciiLower(line)
			}
			haystack = lowered
		}

		pos := 0
		for pos < len(line) {
			idx := strings.Index(haystack[pos:], rule.Prefix)
			if idx < 0 {
				break
			}
			at := pos + idx

			start := at - windowLookbehind
			if start < 0 {
				start = 0
			}
			end := at + len(rule.Prefix) + windowLookahead
			if end > len(line) {
				end = len(line)
			}

			for _, token := range matchWindow(rule, line[start:end]) {
				if seen[token] {
					continue
				}
				seen[token] = true
				if patterns.IsFalsePositive(token) {
					continue
				}
				hits = append(hits, Hit{Pattern: rule.Pattern, Token: token})
			}

			pos = at + len(rule.Prefix)
		}
	}
	return hits
}

// matchWindow runs the rule's full regex against a window and returns the
// matched tokens. Matches that do not contain the rule's prefix are regex
// hits on unrelated window content and are dropped.
func matchWindow(rule *patterns.ScanRule, window string) []string {
	var tokens []string
	for _, m := range rule.Pattern.Regex.FindAllString(window, -1) {
		probe := m
		if rule.FoldCase {
			probe = asciiLower(m)
		}
		if !strings.Contains(probe, rule.Prefix) {
			continue
		}
		tokens = append(tokens, m)
	}
	return tokens
}

// asciiLower returns s with ASCII 'A'..'Z' mapped to lowercase. Unlike
// strings.ToLower it is length-preserving: non-ASCII runes can change byte
// length under full Unicode lowering, which would make offsets found in the
// lowered copy invalid in the original. All rule prefixes are ASCII, so the
// ASCII fold is sufficient for the prefix search.
func asciiLower(s string) string {
	i := 0
	for ; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			break
		}
	}
	if i == len(s) {
		return s
	}
	b := []byte(s)
	for ; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// ScanText runs every pattern's regex across the whole text. Used for
// settings documents, which are small; transcript lines go through ScanLine.
func ScanText(text string) []Hit {
	patterns.CompilePatterns()

	var hits []Hit
	seen := make(map[string]bool)
	for i := range patterns.TokenPatterns {
		pat := &patterns.TokenPatterns[i]
		for _, token := range pat.Regex.FindAllString(text, -1) {
			if seen[token] {
				continue
			}
			seen[token] = true
			if patterns.IsFalsePositive(token) {
				continue
			}
			hits = append(hits, Hit{Pattern: pat, Token: token})
		}
	}
	return hits
}

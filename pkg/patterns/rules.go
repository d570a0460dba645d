package patterns

// ScanRule pairs a token pattern with a literal prefix used for cheap
// substring search before the full regex is attempted. A pattern with several
// possible prefixes (GitHub tokens, Slack tokens) expands to several rules
// sharing one pattern record.
//
// Invariant: any match produced by the rule's regex contains the rule's
// prefix near the match start.
type ScanRule struct {
	// Prefix is the literal scanned for with a plain substring search.
	Prefix string
	// Pattern is the full detection rule run against the bounded window
	// around each prefix hit.
	Pattern *TokenPattern
	// LargeLineSafe marks rules that still run on lines past the large-line
	// threshold. Only highly specific, fixed-prefix key formats qualify;
	// common substrings like "eyJ" or "api_key" are skipped there to bound
	// worst-case cost.
	LargeLineSafe bool
	// FoldCase makes the prefix search case-insensitive, matching rules whose
	// regex carries (?i).
	FoldCase bool
}

// rulePrefixes maps pattern type tags to their literal prefixes and whether
// the rule survives the large-line cutoff.
var rulePrefixes = []struct {
	typ           string
	prefixes      []string
	largeLineSafe bool
	foldCase      bool
}{
	{"anthropic_key", []string{"sk-ant-"}, true, false},
	{"openai_key", []string{"sk-proj-", "sk-"}, true, false},
	{"github_token", []string{"ghp_", "ghs_", "gho_", "github_pat_"}, true, false},
	{"aws_key", []string{"AKIA", "ASIA"}, true, false},
	{"aws_secret", []string{"aws_secret_access_key"}, true, true},
	{"gcp_key", []string{"AIza"}, true, false},
	{"slack_token", []string{"xoxb-", "xoxp-", "xoxa-", "xoxr-", "xoxs-"}, true, false},
	{"stripe_key", []string{"sk_live_", "rk_live_"}, true, false},
	{"private_key", []string{"-----BEGIN"}, true, false},

	// Low-specificity rules are skipped entirely on pathologically large
	// lines; their prefixes are too common to bound worst-case cost there.
	{"jwt_token", []string{"eyJ"}, false, false},
	{"generic_secret", []string{"api_key", "apikey", "api_secret", "auth_token", "access_token", "client_secret"}, false, true},
}

// ScanRules is the derived prefix-anchored rule table. Populated by
// CompilePatterns.
var ScanRules []ScanRule

func compileRules() {
	if ScanRules != nil {
		return
	}
	for _, rp := range rulePrefixes {
		pat := PatternByType(rp.typ)
		if pat == nil {
			continue
		}
		for _, prefix := range rp.prefixes {
			ScanRules = append(ScanRules, ScanRule{
				Prefix:        prefix,
				Pattern:       pat,
				LargeLineSafe: rp.largeLineSafe,
				FoldCase:      rp.foldCase,
			})
		}
	}
}

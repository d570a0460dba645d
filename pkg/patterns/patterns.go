package patterns

import "regexp"

// Severity levels for detected tokens.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
)

// TokenPattern is a static detection rule for one credential family.
// Patterns are defined once at process start and never mutated.
type TokenPattern struct {
	Type        string // stable type tag, e.g. "anthropic_key"
	Pattern     string
	Regex       *regexp.Regexp
	Severity    string
	Description string
	Remediation string
}

// TokenPatterns contains all token detection patterns.
var TokenPatterns = []TokenPattern{
	{
		Type:        "anthropic_key",
		Pattern:     `sk-ant-[a-zA-Z0-9_\-]{20,}`,
		Severity:    SeverityCritical,
		Description: "Anthropic API key",
		Remediation: "Revoke the key in the Anthropic console and issue a new one. Move keys into environment variables, never settings files or chat.",
	},
	{
		Type:        "openai_key",
		Pattern:     `sk-proj-[a-zA-Z0-9_\-]{20,}|sk-[a-zA-Z0-9]{48}`,
		Severity:    SeverityCritical,
		Description: "OpenAI API key",
		Remediation: "Revoke the key at platform.openai.com and rotate any services using it.",
	},
	{
		Type:        "github_token",
		Pattern:     `(?:ghp|ghs|gho)_[a-zA-Z0-9]{20,}|github_pat_[a-zA-Z0-9]{22}_[a-zA-Z0-9]{59}`,
		Severity:    SeverityCritical,
		Description: "GitHub access token",
		Remediation: "Revoke the token under GitHub Settings > Developer settings and audit recent activity on the account.",
	},
	{
		Type:        "aws_key",
		Pattern:     `\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`,
		Severity:    SeverityCritical,
		Description: "AWS access key ID",
		Remediation: "Deactivate the access key in the AWS IAM console and rotate it. Prefer IAM roles over long-lived keys.",
	},
	{
		Type:        "aws_secret",
		Pattern:     `(?i)aws_secret_access_key["']?\s*[=:]\s*["']?([A-Za-z0-9/+=]{40})`,
		Severity:    SeverityCritical,
		Description: "AWS secret access key",
		Remediation: "Rotate the secret key immediately via the AWS console and scrub it from any committed files.",
	},
	{
		Type:        "gcp_key",
		Pattern:     `AIza[0-9A-Za-z_\-]{35}`,
		Severity:    SeverityHigh,
		Description: "Google Cloud API key",
		Remediation: "Restrict or delete the key in the GCP console and switch to application default credentials.",
	},
	{
		Type:        "slack_token",
		Pattern:     `xox[baprs]-[0-9a-zA-Z\-]{10,}`,
		Severity:    SeverityHigh,
		Description: "Slack token",
		Remediation: "Revoke the token from the Slack app management page.",
	},
	{
		Type:        "stripe_key",
		Pattern:     `(?:sk|rk)_live_[0-9a-zA-Z]{24,}`,
		Severity:    SeverityCritical,
		Description: "Stripe live secret key",
		Remediation: "Roll the key in the Stripe dashboard; live keys grant access to payment data.",
	},
	{
		Type:        "jwt_token",
		Pattern:     `eyJ[A-Za-z0-9_\-]{10,}\.[A-Za-z0-9_\-]{10,}\.[A-Za-z0-9_\-]{10,}`,
		Severity:    SeverityMedium,
		Description: "JSON Web Token",
		Remediation: "Invalidate the session that issued this token. JWTs often embed account identity and expiry far in the future.",
	},
	{
		Type:        "private_key",
		Pattern:     `-----BEGIN (?:RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY(?: BLOCK)?-----`,
		Severity:    SeverityCritical,
		Description: "Private key material",
		Remediation: "Treat the key as compromised: generate a new key pair and remove the old public key from every host that trusts it.",
	},
	{
		Type:        "generic_secret",
		Pattern:     `(?i)(?:api_key|apikey|api_secret|auth_token|access_token|client_secret)["']?\s*[=:]\s*["']?([A-Za-z0-9_\-]{20,})`,
		Severity:    SeverityMedium,
		Description: "Generic secret assignment",
		Remediation: "Verify whether the assigned value is a live credential and rotate it if so.",
	},
}

// falsePositivePatterns are checked against every candidate match, on every
// entry path. A candidate matching any of these is discarded.
var falsePositivePatterns = []string{
	`(?i)xxx+`,
	`(?i)(your|my)[_-]?(api[_-]?key|token|secret)`,
	`(?i)placeholder`,
	`(?i)example`,
	`(?i)sample`,
	`(?i)dummy`,
	`(?i)redacted`,
	`\$\{[^}]*\}`,
	`\{\{[^}]*\}\}`,
	`<[A-Z_]+>`,
}

var compiledFalsePositives []*regexp.Regexp

// CompilePatterns pre-compiles all regexes. Called once at process start;
// subsequent calls are no-ops.
func CompilePatterns() {
	for i := range TokenPatterns {
		if TokenPatterns[i].Regex == nil {
			TokenPatterns[i].Regex = regexp.MustCompile(TokenPatterns[i].Pattern)
		}
	}
	if compiledFalsePositives == nil {
		for _, p := range falsePositivePatterns {
			compiledFalsePositives = append(compiledFalsePositives, regexp.MustCompile(p))
		}
	}
	compileRules()
}

// IsFalsePositive reports whether a candidate match looks like a placeholder
// or template value rather than a live credential.
func IsFalsePositive(match string) bool {
	CompilePatterns()
	for _, re := range compiledFalsePositives {
		if re.MatchString(match) {
			return true
		}
	}
	return false
}

// PatternByType returns the pattern with the given type tag, or nil.
func PatternByType(typ string) *TokenPattern {
	for i := range TokenPatterns {
		if TokenPatterns[i].Type == typ {
			return &TokenPatterns[i]
		}
	}
	return nil
}

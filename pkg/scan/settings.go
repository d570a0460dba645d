package scan

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/credsweep/credsweep/pkg/config"
	"github.com/credsweep/credsweep/pkg/patterns"
)

// ScanSettings scans the user-scope settings document plus every indexed
// project's settings and settings.local documents. Settings documents are
// small, so every pattern's regex runs over each string value directly; the
// windowed strategy is reserved for transcripts.
//
// Missing or unparseable documents are treated as empty, not as errors.
func ScanSettings(dataDir string) []TokenMatch {
	var matches []TokenMatch

	matches = append(matches, scanSettingsDoc(
		config.UserSettingsPath(dataDir), ScopeUser, "")...)

	for _, projectPath := range indexedProjects(dataDir) {
		matches = append(matches, scanSettingsDoc(
			config.ProjectSettingsPath(projectPath), ScopeProject, projectPath)...)
		matches = append(matches, scanSettingsDoc(
			config.ProjectLocalSettingsPath(projectPath), ScopeProjectLocal, projectPath)...)
	}
	return matches
}

// indexedProjects reads the project index and returns its project paths,
// sorted. A missing or corrupt index means no indexed projects.
func indexedProjects(dataDir string) []string {
	data, err := os.ReadFile(config.IndexPath(dataDir))
	if err != nil {
		return nil
	}
	var index struct {
		Projects map[string]json.RawMessage `json:"projects"`
	}
	if err := json.Unmarshal(data, &index); err != nil {
		return nil
	}

	paths := make([]string, 0, len(index.Projects))
	for path := range index.Projects {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func scanSettingsDoc(path, scope, projectPath string) []TokenMatch {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}

	var matches []TokenMatch
	walkSettingsValue(doc, "", func(key, value string) {
		for _, hit := range ScanText(value) {
			matches = append(matches, TokenMatch{
				ID:            NewMatchID(),
				Type:          hit.Pattern.Type,
				Severity:      hit.Pattern.Severity,
				Description:   hit.Pattern.Description,
				Remediation:   hit.Pattern.Remediation,
				RedactedValue: patterns.RedactToken(hit.Token),
				FullPattern:   hit.Token,
				Location: SettingsLocation{
					Scope:       scope,
					ProjectPath: projectPath,
					SettingsKey: key,
				},
			})
		}
	})
	return matches
}

// walkSettingsValue visits every string in a parsed JSON document, handing
// the visitor the dotted/bracketed key path it was found at
// (e.g. "env.API_KEY", "hooks[2].command").
func walkSettingsValue(value any, keyPath string, visit func(key, value string)) {
	switch v := value.(type) {
	case string:
		visit(keyPath, v)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := k
			if keyPath != "" {
				child = keyPath + "." + k
			}
			walkSettingsValue(v[k], child, visit)
		}
	case []any:
		for i, item := range v {
			walkSettingsValue(item, fmt.Sprintf("%s[%d]", keyPath, i), visit)
		}
	}
}

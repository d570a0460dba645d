package scan

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenMatchJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		match TokenMatch
	}{
		{
			"settings_location",
			TokenMatch{
				ID:            NewMatchID(),
				Type:          "anthropic_key",
				Severity:      "critical",
				Description:   "Anthropic API key",
				Remediation:   "rotate it",
				RedactedValue: "sk-a...7890",
				FullPattern:   anthropicToken,
				Location: SettingsLocation{
					Scope:       ScopeProject,
					ProjectPath: "/home/user/myapp",
					SettingsKey: "env.API_KEY",
				},
			},
		},
		{
			"discussion_location",
			TokenMatch{
				ID:            NewMatchID(),
				Type:          "github_token",
				Severity:      "critical",
				RedactedValue: "ghp_...1234",
				FullPattern:   githubToken,
				Location: DiscussionLocation{
					EncodedProjectDir: "-home-user-myapp",
					ProjectName:       "myapp",
					SessionID:         "session-1",
					FilePath:          "/tmp/projects/-home-user-myapp/session-1.jsonl",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.match)
			require.NoError(t, err)

			var got TokenMatch
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.match, got)
		})
	}
}

func TestLocationMarshalCarriesSourceTag(t *testing.T) {
	data, err := json.Marshal(SettingsLocation{Scope: ScopeUser, SettingsKey: "apiKey"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"source":"settings","scope":"user","settingsKey":"apiKey"}`, string(data))

	data, err = json.Marshal(DiscussionLocation{
		EncodedProjectDir: "-a-b", ProjectName: "b", SessionID: "s", FilePath: "/p",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"source":"discussion","encodedProjectDir":"-a-b","projectName":"b","sessionId":"s","filePath":"/p"}`, string(data))
}

func TestUnmarshalLocationRejectsUnknownSource(t *testing.T) {
	_, err := UnmarshalLocation([]byte(`{"source":"registry"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown location source")
}

func TestUnmarshalLocationNull(t *testing.T) {
	loc, err := UnmarshalLocation([]byte(`null`))
	require.NoError(t, err)
	assert.Nil(t, loc)
}

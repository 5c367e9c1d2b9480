package summarize

import (
	"strings"
	"testing"

	"github.com/dandi/dandi/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		wantFacts int
		wantErr   bool
	}{
		{"plain_json", `{"summary":"A web framework.","cool_facts":["fast","small"]}`, 2, false},
		{"fenced_json", "```json\n{\"summary\":\"S\",\"cool_facts\":[\"f\"]}\n```", 1, false},
		{"bare_fence", "```\n{\"summary\":\"S\",\"cool_facts\":[]}\n```", 0, false},
		{"surrounding_whitespace", "\n\n  {\"summary\":\"S\",\"cool_facts\":[\"a\"]}  \n", 1, false},
		{"missing_summary", `{"cool_facts":["a"]}`, 0, true},
		{"empty_summary", `{"summary":"","cool_facts":["a"]}`, 0, true},
		{"missing_facts", `{"summary":"S"}`, 0, true},
		{"null_facts", `{"summary":"S","cool_facts":null}`, 0, true},
		{"wrong_type", `{"summary":"S","cool_facts":"a"}`, 0, true},
		{"prose", "Here is your summary: it is good.", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSummary(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperror.ErrParse)
				assert.NotErrorIs(t, err, apperror.ErrUpstream)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, got.Summary)
			assert.Len(t, got.CoolFacts, tt.wantFacts)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	prompt := BuildPrompt("# Hello\nWorld")

	assert.True(t, strings.HasPrefix(prompt, "Summarize this github repository from this readme file content:\n# Hello\nWorld\n\n{"))
	assert.Contains(t, prompt, `"cool_facts"`)
	assert.True(t, strings.HasSuffix(prompt, "}\n\nReturn your response in valid JSON format matching the schema above."))
}

func TestBuildPrompt_ReadmeWithPlaceholders(t *testing.T) {
	t.Parallel()

	prompt := BuildPrompt("literal {schema} text")
	assert.Contains(t, prompt, "literal {schema} text")
	assert.Equal(t, 1, strings.Count(prompt, `"additionalProperties"`))
}

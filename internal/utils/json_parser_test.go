package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatReply struct {
	Reply       string   `json:"reply"`
	Suggestions []string `json:"suggestions"`
}

func TestParseLLMJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    chatReply
		wantErr bool
	}{
		{
			name:  "Pure JSON",
			input: `{"reply": "Here are villas in Ronda", "suggestions": ["Show cheaper ones"]}`,
			want:  chatReply{Reply: "Here are villas in Ronda", Suggestions: []string{"Show cheaper ones"}},
		},
		{
			name:  "Markdown code block",
			input: "```json\n{\"reply\": \"Two townhouses match\"}\n```",
			want:  chatReply{Reply: "Two townhouses match"},
		},
		{
			name:  "Surrounding text",
			input: `Sure! {"reply": "Nothing under that budget", "suggestions": []} Hope that helps.`,
			want:  chatReply{Reply: "Nothing under that budget", Suggestions: []string{}},
		},
		{
			name:  "Trailing comma",
			input: `{"reply": "Found 3 fincas", "suggestions": ["Near Gaucín",],}`,
			want:  chatReply{Reply: "Found 3 fincas", Suggestions: []string{"Near Gaucín"}},
		},
		{
			name:  "Unquoted keys",
			input: `{reply: "Cottages near Grazalema"}`,
			want:  chatReply{Reply: "Cottages near Grazalema"},
		},
		{
			name:  "Single quotes",
			input: `{'reply': 'Apartments in Nerja'}`,
			want:  chatReply{Reply: "Apartments in Nerja"},
		},
		{
			name:    "Empty string",
			input:   "  ",
			wantErr: true,
		},
		{
			name:    "Plain prose",
			input:   "I could not find anything.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got chatReply
			err := ParseLLMJSON(tt.input, &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractBalancedBraces(t *testing.T) {
	tests := []struct {
		name  string
		input string
		open  rune
		close rune
		want  string
	}{
		{"Simple object", `{"a": 1} tail`, '{', '}', `{"a": 1}`},
		{"Nested objects", `{"a": {"b": 2}}`, '{', '}', `{"a": {"b": 2}}`},
		{"Braces inside string", `{"text": "Hello {world}"}`, '{', '}', `{"text": "Hello {world}"}`},
		{"Array", `[1, 2, 3]`, '[', ']', `[1, 2, 3]`},
		{"Unbalanced", `{"a": 1`, '{', '}', ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractBalancedBraces(tt.input, tt.open, tt.close))
		})
	}
}

func TestExtractFromMarkdown(t *testing.T) {
	assert.Equal(t, `{"test": true}`, extractFromMarkdown("```json\n{\"test\": true}\n```"))
	assert.Equal(t, `{"test": true}`, extractFromMarkdown("```\n{\"test\": true}\n```"))
	assert.Equal(t, "", extractFromMarkdown(`{"test": true}`))
}

func TestPrettyPrintJSON(t *testing.T) {
	out, err := PrettyPrintJSON(map[string]int{"limit": 5})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"limit\": 5\n}", out)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "Mála...", TruncateString("Málaga", 4))
}

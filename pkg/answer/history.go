package answer

import (
	"fmt"
	"regexp"
	"strings"

	"ai-search-be/pkg/llm"
	"ai-search-be/pkg/search"
)

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThink removes reasoning blocks some models emit before the answer.
func StripThink(s string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(s, ""))
}

// FormatHistory renders history as "Human:"/"AI:" lines for rephrasing prompts.
func FormatHistory(history []llm.Message) string {
	var b strings.Builder
	for _, m := range history {
		speaker := "AI"
		if m.Role == llm.RoleUser {
			speaker = "Human"
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, m.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

// ConvertHistory maps client [role, text] pairs to messages. "human" is an
// alias for user; anything else is treated as the assistant.
func ConvertHistory(pairs [][2]string) []llm.Message {
	out := make([]llm.Message, 0, len(pairs))
	for _, p := range pairs {
		role := llm.RoleAssistant
		if p[0] == "human" || p[0] == llm.RoleUser {
			role = llm.RoleUser
		}
		out = append(out, llm.Message{Role: role, Content: p[1]})
	}
	return out
}

// BuildContext numbers documents so the model can cite them as [n].
func BuildContext(docs []search.Result) string {
	var b strings.Builder
	for i, d := range docs {
		fmt.Fprintf(&b, "%d. %s\n%s\n\n", i+1, d.Title, d.Content)
	}
	return strings.TrimSpace(b.String())
}

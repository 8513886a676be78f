package command

import (
	"strings"

	"github.com/vietddude/tipbot/internal/core/domain"
)

// Normalizer turns raw chat text into a ParsedCommand. Mention tokens for
// every platform are filtered out regardless of where the text came from,
// because cross-posted or copy-pasted mentions must not leak into
// argument parsing.
type Normalizer struct {
	mentions []string // lower-cased, non-empty
}

// NewNormalizer creates a normalizer filtering the given mention forms.
func NewNormalizer(mentions []string) *Normalizer {
	n := &Normalizer{}
	for _, m := range mentions {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			n.mentions = append(n.mentions, m)
		}
	}
	return n
}

// Normalize splits on whitespace, drops any token containing a configured
// mention form, strips a leading slash from the keyword, and lower-cases
// it. Empty input after filtering yields the sentinel empty command.
func (n *Normalizer) Normalize(raw string) domain.ParsedCommand {
	var tokens []string
	for _, tok := range strings.Fields(raw) {
		if n.isMention(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	if len(tokens) == 0 {
		return domain.ParsedCommand{}
	}

	keyword := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	if keyword == "" {
		return domain.ParsedCommand{}
	}
	return domain.ParsedCommand{Keyword: keyword, Args: tokens[1:]}
}

func (n *Normalizer) isMention(tok string) bool {
	lower := strings.ToLower(tok)
	for _, m := range n.mentions {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

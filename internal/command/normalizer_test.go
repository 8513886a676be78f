package command

import (
	"strings"
	"testing"
)

var testMentions = []string{"@BotMention", "@tip_bot", "<@987654321>"}

func TestNormalize_MentionAndSend(t *testing.T) {
	n := NewNormalizer(testMentions)

	cmd := n.Normalize("@BotMention send @alice 2 SOL")
	if cmd.Keyword != "send" {
		t.Errorf("expected keyword send, got %q", cmd.Keyword)
	}
	if len(cmd.Args) != 3 || cmd.Args[0] != "@alice" || cmd.Args[1] != "2" || cmd.Args[2] != "SOL" {
		t.Errorf("unexpected args: %v", cmd.Args)
	}
}

func TestNormalize_FiltersAllMentionForms(t *testing.T) {
	n := NewNormalizer(testMentions)

	// Cross-posted text may carry mentions from any platform.
	inputs := []string{
		"@BotMention balance",
		"@tip_bot balance @BotMention",
		"<@987654321> balance",
		"balance <@987654321> @tip_bot @BotMention",
	}
	for _, raw := range inputs {
		cmd := n.Normalize(raw)
		if cmd.Keyword != "balance" {
			t.Errorf("Normalize(%q): expected keyword balance, got %q", raw, cmd.Keyword)
		}
		for _, arg := range cmd.Args {
			lower := strings.ToLower(arg)
			for _, m := range testMentions {
				if strings.Contains(lower, strings.ToLower(m)) {
					t.Errorf("Normalize(%q): mention leaked into args: %v", raw, cmd.Args)
				}
			}
		}
	}
}

func TestNormalize_SlashPrefixEquivalent(t *testing.T) {
	n := NewNormalizer(testMentions)

	bare := n.Normalize("balance")
	slashed := n.Normalize("/balance")
	if bare.Keyword != slashed.Keyword {
		t.Errorf("slash and bare forms differ: %q vs %q", bare.Keyword, slashed.Keyword)
	}
}

func TestNormalize_CaseInsensitiveKeyword(t *testing.T) {
	n := NewNormalizer(testMentions)

	cmd := n.Normalize("SEND @bob 1")
	if cmd.Keyword != "send" {
		t.Errorf("expected lower-cased keyword, got %q", cmd.Keyword)
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	n := NewNormalizer(testMentions)

	for _, raw := range []string{"", "   ", "@BotMention", "@BotMention @tip_bot"} {
		cmd := n.Normalize(raw)
		if !cmd.IsEmpty() {
			t.Errorf("Normalize(%q): expected empty command, got %+v", raw, cmd)
		}
	}
}

func TestNormalize_PreservesArgOrder(t *testing.T) {
	n := NewNormalizer(testMentions)

	cmd := n.Normalize("/transaction sig1 sig2 sig3")
	want := []string{"sig1", "sig2", "sig3"}
	if len(cmd.Args) != len(want) {
		t.Fatalf("expected %d args, got %d", len(want), len(cmd.Args))
	}
	for i, arg := range cmd.Args {
		if arg != want[i] {
			t.Errorf("arg %d: expected %q, got %q", i, want[i], arg)
		}
	}
}

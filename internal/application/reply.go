package application

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/bnema/taskmate/internal/domain"
)

var (
	confirmWords = wordSet(
		"yes", "y", "yeah", "yep", "yup", "ok", "okay", "confirm", "confirmed", "proceed",
		"go ahead", "go", "do it", "please do", "continue", "sure", "correct", "right", "affirmative",
		"that's right", "thats right", "that is right", "sounds good", "perfect",
	)
	denyWords = wordSet(
		"no", "n", "nope", "nah", "cancel", "abort", "stop", "nevermind", "never mind",
		"forget it", "don't", "dont", "wrong",
	)
	// closers may trail a bare confirmation or denial without changing it.
	closers = wordSet("please", "thanks", "thank you", "thx", "then")

	// fillers complete "it's ..." without naming anybody.
	confirmFillers = wordSet("fine", "ok", "okay", "good", "alright", "all right", "correct", "right", "them")
	denyFillers    = wordSet("wrong", "nobody", "no one", "nothing", "neither", "none")
)

const leadWords = `yes|yeah|yep|ok|okay|sure|no|nope|nah|not\s+[^\s,.!:;]+`

var (
	overridePattern = regexp.MustCompile(`(?i)^(?:(` + leadWords + `)[\s,.!:;-]+)?(?:(?:but|actually)[\s,]+)?` +
		`(?:i\s+meant|i\s+mean|i\s+said|it's|its|it\s+is|use|try|make\s+it|assign(?:\s+it)?\s+to|give\s+it\s+to)\s+(.+)$`)
	leadNamePattern = regexp.MustCompile(`(?i)^(` + leadWords + `)[\s,.!:;-]+(?:(?:but|actually)[\s,]+)?(\S+)$`)
)

func wordSet(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, word := range words {
		out[word] = struct{}{}
	}
	return out
}

// ClassifyReply reads a user's answer to an outstanding "did you mean" question.
// A reply is a plain confirmation or denial only when it says nothing else;
// naming somebody after "yes" or "no" is an override. A bare name counts as an
// override only when it is already a roster member; misspelt overrides need an
// explicit form such as "use Sammy".
func ClassifyReply(reply string, roster domain.Roster) domain.Reply {
	text := strings.TrimSpace(reply)
	tokens := replyTokens(text)
	if len(tokens) == 0 {
		return domain.Reply{Kind: domain.ReplyUnrelated}
	}

	if consumedBy(tokens, confirmWords) {
		return domain.Reply{Kind: domain.ReplyConfirm}
	}
	if consumedBy(tokens, denyWords) {
		return domain.Reply{Kind: domain.ReplyDeny}
	}

	trimmed := strings.TrimRight(text, ".!?")
	if m := overridePattern.FindStringSubmatch(trimmed); m != nil {
		lead, name := leadKind(m[1]), cleanName(m[2])
		switch {
		case name == "":
		case isFiller(name, confirmFillers):
			return fillerReply(lead, domain.ReplyConfirm)
		case isFiller(name, denyFillers):
			return fillerReply(lead, domain.ReplyDeny)
		default:
			return domain.Reply{Kind: domain.ReplyOverride, Name: name}
		}
	}
	if m := leadNamePattern.FindStringSubmatch(trimmed); m != nil && looksLikeName(m[2], roster) {
		return domain.Reply{Kind: domain.ReplyOverride, Name: strings.Trim(m[2], ",.!?;:")}
	}
	if canonical, ok := roster.Canonical(trimmed); ok {
		return domain.Reply{Kind: domain.ReplyOverride, Name: canonical}
	}

	return domain.Reply{Kind: domain.ReplyUnrelated}
}

// consumedBy reports whether tokens split entirely into phrases of set,
// allowing closers anywhere after the first phrase.
func consumedBy(tokens []string, set map[string]struct{}) bool {
	matched := false
	for i := 0; i < len(tokens); {
		step := 0
		for n := min(3, len(tokens)-i); n > 0 && step == 0; n-- {
			phrase := strings.Join(tokens[i:i+n], " ")
			if _, ok := set[phrase]; ok {
				step, matched = n, true
			} else if _, ok := closers[phrase]; ok && matched {
				step = n
			}
		}
		if step == 0 {
			return false
		}
		i += step
	}
	return matched
}

func leadKind(lead string) domain.ReplyKind {
	key := replyKey(lead)
	switch {
	case key == "":
		return domain.ReplyUnrelated
	case strings.HasPrefix(key, "not "):
		return domain.ReplyDeny
	}
	if _, ok := denyWords[key]; ok {
		return domain.ReplyDeny
	}
	return domain.ReplyConfirm
}

// fillerReply settles "it's fine" style answers: an explicit yes or no in
// front wins over the filler itself.
func fillerReply(lead, filler domain.ReplyKind) domain.Reply {
	if lead != domain.ReplyUnrelated {
		return domain.Reply{Kind: lead}
	}
	return domain.Reply{Kind: filler}
}

func isFiller(name string, set map[string]struct{}) bool {
	_, ok := set[replyKey(name)]
	return ok
}

// cleanName drops trailing courtesy words and punctuation from a captured name.
func cleanName(raw string) string {
	name := strings.Trim(strings.TrimSpace(raw), ",.!?;: ")
	for {
		fields := strings.Fields(name)
		if len(fields) < 2 {
			return name
		}
		last := strings.ToLower(strings.Trim(fields[len(fields)-1], ",.!?;:"))
		if _, ok := closers[last]; !ok {
			return name
		}
		name = strings.Trim(strings.Join(fields[:len(fields)-1], " "), ",.!?;: ")
	}
}

// looksLikeName accepts roster members and capitalised words that are not
// themselves confirmations or denials.
func looksLikeName(word string, roster domain.Roster) bool {
	word = strings.Trim(word, ",.!?;:")
	if _, ok := roster.Canonical(word); ok {
		return true
	}
	key := replyKey(word)
	if _, ok := denyWords[key]; ok {
		return false
	}
	if _, ok := confirmWords[key]; ok {
		return false
	}
	if _, ok := closers[key]; ok {
		return false
	}
	r := []rune(word)
	return len(r) > 1 && unicode.IsUpper(r[0])
}

func replyKey(text string) string {
	return strings.Join(replyTokens(text), " ")
}

func replyTokens(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if word := strings.Trim(field, ".!?,;:-"); word != "" {
			out = append(out, word)
		}
	}
	return out
}

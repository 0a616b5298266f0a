package bot

import "strings"

type faqEntry struct {
	question string
	keywords []string
	answer   string
}

var faqTable = []faqEntry{
	{
		question: "How do I talk to a specialist?",
		keywords: []string{"specialist", "human", "real person"},
		answer:   "Pick \"Talk to a specialist\" in the main menu and fill in the short request form. A specialist will reach out using the contact you leave.",
	},
	{
		question: "Is the conversation confidential?",
		keywords: []string{"confidential", "anonymous", "privacy", "private"},
		answer:   "Yes. Conversations are kept only for the duration of your consultation and are never shared outside the service.",
	},
	{
		question: "How long until a specialist replies?",
		keywords: []string{"how long", "wait", "reply time"},
		answer:   "Specialists usually respond within one business day. Urgent requests are picked up sooner.",
	},
	{
		question: "What can the AI assistant help with?",
		keywords: []string{"ai", "assistant", "bot"},
		answer:   "The AI assistant can offer general guidance and a listening ear. It does not replace a specialist and will not make diagnoses.",
	},
	{
		question: "Can I cancel my request?",
		keywords: []string{"cancel", "withdraw", "stop"},
		answer:   "You can always abandon a form with /menu before confirming it. Submitted requests can be cancelled by telling the specialist who contacts you.",
	},
}

// lookupFAQ matches free text against the static question table, first by
// exact question match and then by best-effort containment.
func lookupFAQ(text string) (string, bool) {
	normalized := normalizeFAQ(text)
	if normalized == "" {
		return "", false
	}

	for _, entry := range faqTable {
		if normalizeFAQ(entry.question) == normalized {
			return entry.answer, true
		}
	}
	for _, entry := range faqTable {
		for _, kw := range entry.keywords {
			if strings.Contains(normalized, kw) {
				return entry.answer, true
			}
		}
	}
	return "", false
}

func faqQuestionList() string {
	var b strings.Builder
	for i, entry := range faqTable {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(entry.question)
	}
	return b.String()
}

func normalizeFAQ(text string) string {
	cleaned := strings.ToLower(strings.TrimSpace(text))
	for _, ch := range []string{"!", ".", ",", "?", ":", ";"} {
		cleaned = strings.ReplaceAll(cleaned, ch, "")
	}
	return cleaned
}

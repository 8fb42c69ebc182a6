package enrich

import "fmt"

func personaPrompt(company, title string) string {
	return fmt.Sprintf(`You are a B2B economics salesperson at %s.
Given this headline: "%s", list the single most relevant persona (job title) to target, such as 'COO' or 'Supply Chain Director'.`,
		company, title)
}

func impactPrompt(sector, title string) string {
	if sector == "" {
		sector = "the selected sector"
	}
	return fmt.Sprintf(`On a scale of 1-5, where 5 = highest business impact, rate this news headline for B2B clients in %s: "%s". Reply with only the number.`,
		sector, title)
}

func subjectPrompt(title string) string {
	return fmt.Sprintf(`Based on this news headline, write a 6-8-word email subject line that would encourage a busy executive to open: "%s". Keep it punchy.`,
		title)
}

func emailPrompt(company, title, persona string) string {
	return fmt.Sprintf(`You are a B2B outreach specialist at %[1]s.
Use this news headline to write a concise outreach email that:
- Explains the news (no source),
- Describes a plausible business impact,
- Mentions %[1]s' economic insight,
- Invites the recipient to a brief call.

Persona: %[2]s
Headline: %[3]s

Keep it professional, helpful, and to the point.`,
		company, persona, title)
}

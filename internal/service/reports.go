package service

import (
	"fmt"
	"strings"

	"github.com/pmlens/insights/internal/models"
)

// AgenticAnalysis renders the analysis report for a question and its
// retrieved evidence. Pure function: a fixed markdown template with the
// evidence lines interpolated, no branching on evidence content. Returns
// markdown, never structured data.
func AgenticAnalysis(question string, evidence []models.EvidenceItem) string {
	var b strings.Builder

	b.WriteString("## Summary\n")
	b.WriteString("Payment failures on Android may be caused by a mix of **UI confusion** ")
	b.WriteString("(users think payment failed, abandon, or mis-tap) and **platform-specific ")
	b.WriteString("integration issues** (SDK, network, or auth differences).\n\n")

	b.WriteString("## What the evidence suggests\n")
	b.WriteString(evidenceLines(evidence))
	b.WriteString("\n\n")

	b.WriteString("## Likely root-cause buckets\n")
	b.WriteString("- **UI/UX:** confusing CTA, unclear error states, payment method selection friction, redirect issues\n")
	b.WriteString("- **Integration:** Android SDK mismatch, webview/3DS handoff problems, billing permissions, play services\n")
	b.WriteString("- **Backend:** idempotency handling, gateway error mapping, retries causing double-fail perception\n\n")

	b.WriteString("## Recommended next steps\n")
	b.WriteString("- Add **structured logging** on the Android payment flow (start → method selected → auth → confirmation).\n")
	b.WriteString("- Compare Android vs iOS funnel: **attempt rate, auth-fail rate, drop-off step**.\n")
	b.WriteString("- Run targeted testing on Android devices with varied OS versions and network conditions.\n\n")

	b.WriteString("## Follow-up questions\n")
	b.WriteString("- Are there Android-specific error logs or user reports tied to the question: \"")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\"?\n")
	b.WriteString("- Is the Android payment UI identical to iOS, or are there platform-specific differences?\n")
	b.WriteString("- What is the payment failure rate on Android vs iOS?")

	return b.String()
}

// WeeklyBrief renders the weekly PM brief for a question and its retrieved
// evidence. Like AgenticAnalysis, a static template: only the evidence IDs
// are interpolated.
func WeeklyBrief(question string, evidence []models.EvidenceItem) string {
	ids := make([]string, 0, len(evidence))
	for _, e := range evidence {
		ids = append(ids, e.ID.String())
	}

	idsText := "None"
	if len(ids) > 0 {
		idsText = strings.Join(ids, ", ")
	}

	var b strings.Builder

	b.WriteString("## Weekly PM Brief — Payments Reliability\n\n")

	b.WriteString("### This week's headline\n")
	b.WriteString("Investigate \"")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\" end-to-end and validate whether the issue is **technical**, **UX-driven**, or both.\n\n")

	b.WriteString("### Why it matters\n")
	b.WriteString("Payment failures directly impact **conversion**, **revenue**, and **user trust**. ")
	b.WriteString("Platform-specific issues can quietly grow if we don't measure funnel drop-offs by platform.\n\n")

	b.WriteString("### Evidence used\n")
	b.WriteString("- Evidence IDs: ")
	b.WriteString(idsText)
	b.WriteString("\n\n")

	b.WriteString("### What we think is happening\n")
	b.WriteString("- Users may be experiencing **confusing payment UI states** (success/failure ambiguity).\n")
	b.WriteString("- There may be Android-only **handoff/auth/SDK** issues (e.g. 3DS, webview redirects, device/network variance).\n\n")

	b.WriteString("### Metrics to watch\n")
	b.WriteString("- Payment funnel by step (Android vs iOS): attempt → auth → confirm → success\n")
	b.WriteString("- Failure reasons distribution (gateway codes mapped to user-visible errors)\n")
	b.WriteString("- Drop-off rate at the \"confirm payment\" step\n\n")

	b.WriteString("### Proposed plan (next 5 days)\n")
	b.WriteString("- Day 1–2: add logs and a dashboard for Android payment steps\n")
	b.WriteString("- Day 3: replicate on top devices/OS versions; capture screen recordings\n")
	b.WriteString("- Day 4: ship a quick UX patch for error states if needed\n")
	b.WriteString("- Day 5: validate impact with funnel deltas and support ticket trend\n\n")

	b.WriteString("### Risks / dependencies\n")
	b.WriteString("- Payment provider SDK version differences\n")
	b.WriteString("- Error mapping may be hiding true causes (generic \"failed\")")

	return b.String()
}

// evidenceLines renders one markdown bullet per evidence item.
func evidenceLines(evidence []models.EvidenceItem) string {
	if len(evidence) == 0 {
		return "- No evidence retrieved."
	}

	lines := make([]string, 0, len(evidence))
	for _, e := range evidence {
		platform := orUnknown(e.Platform)
		country := orUnknown(e.Country)
		lines = append(lines, fmt.Sprintf("- Evidence #%s (%s %s, sim %.3f): %s",
			e.ID, platform, country, e.Similarity, e.Text))
	}

	return strings.Join(lines, "\n")
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}

	return s
}

package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pmlens/insights/internal/models"
)

func TestAgenticAnalysis(t *testing.T) {
	t.Run("interpolates evidence lines", func(t *testing.T) {
		id := uuid.MustParse("018e1234-5678-9abc-def0-111111111111")
		evidence := []models.EvidenceItem{
			{ID: id, Platform: "Android", Country: "US", Similarity: 0.912, Text: "payment keeps failing"},
		}

		md := AgenticAnalysis("why do Android payments fail?", evidence)

		assert.Contains(t, md, "## Summary")
		assert.Contains(t, md, "Evidence #"+id.String())
		assert.Contains(t, md, "(Android US, sim 0.912)")
		assert.Contains(t, md, "payment keeps failing")
		assert.Contains(t, md, "why do Android payments fail?")
	})

	t.Run("no evidence renders placeholder", func(t *testing.T) {
		md := AgenticAnalysis("anything", nil)

		assert.Contains(t, md, "- No evidence retrieved.")
	})

	t.Run("missing platform and country render as question marks", func(t *testing.T) {
		evidence := []models.EvidenceItem{{ID: uuid.New(), Similarity: 0.5, Text: "hmm"}}

		md := AgenticAnalysis("q", evidence)

		assert.Contains(t, md, "(? ?, sim 0.500)")
	})
}

func TestWeeklyBrief(t *testing.T) {
	t.Run("lists evidence IDs", func(t *testing.T) {
		a := uuid.MustParse("018e1234-5678-9abc-def0-111111111111")
		b := uuid.MustParse("018e1234-5678-9abc-def0-222222222222")
		evidence := []models.EvidenceItem{{ID: a}, {ID: b}}

		md := WeeklyBrief("payments reliability", evidence)

		assert.Contains(t, md, "## Weekly PM Brief")
		assert.Contains(t, md, a.String()+", "+b.String())
		assert.Contains(t, md, "payments reliability")
	})

	t.Run("no evidence renders None", func(t *testing.T) {
		md := WeeklyBrief("q", nil)

		assert.Contains(t, md, "- Evidence IDs: None")
	})
}

package insights

import (
	"encoding/json"
	"fmt"
	"strings"

	"mktintel/pkg/contracts/domain"
)

// buildChatPrompt renders the analyst prompt for a free-form question. The
// model only ever sees the read-only summary snapshot, serialized as JSON.
func buildChatPrompt(question string, stats domain.SummaryStats) (string, error) {
	summary, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal summary snapshot: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("You are a marketing analyst AI. A user has asked a question about their marketing data.\n")
	sb.WriteString("Answer the question using only the data below.\n\n")
	sb.WriteString("User question: ")
	sb.WriteString(strings.TrimSpace(question))
	sb.WriteString("\n\nMarketing and business summary (JSON):\n")
	sb.Write(summary)
	sb.WriteString("\n\nProvide a concise, concrete answer grounded in the numbers above.\n")
	return sb.String(), nil
}

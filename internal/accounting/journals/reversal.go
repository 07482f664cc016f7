package journals

import (
	"fmt"
	"strings"
	"time"
)

// BuildReversal returns the Posted mirror of original dated on date. Every line
// keeps its account, currency and rate with debit and credit swapped.
func BuildReversal(original JournalEntry, actorID int64, date time.Time) JournalEntry {
	entry := NewSystemEntry(Header{
		CompanyID:    original.CompanyID,
		Module:       original.Module,
		Date:         date,
		Currency:     original.Currency,
		ExchangeRate: original.ExchangeRate,
		Description:  reversalDescription(original.Number, original.Description),
		Reference:    original.Reference,
		ActorID:      actorID,
	}, mirrorLines(original.Lines))
	id := original.ID
	entry.ReversalOfID = &id
	return entry
}

func mirrorLines(lines []LineItem) []LineInput {
	out := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, LineInput{
			AccountID:    line.AccountID,
			Debit:        line.Credit,
			Credit:       line.Debit,
			Currency:     line.Currency,
			ExchangeRate: line.ExchangeRate,
			Description:  line.Description,
		})
	}
	return out
}

func reversalDescription(number, description string) string {
	if strings.TrimSpace(description) == "" {
		return fmt.Sprintf("Reversal of %s", number)
	}
	return fmt.Sprintf("Reversal of %s: %s", number, description)
}

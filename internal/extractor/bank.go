// bank.go - Issuing bank / cooperative identification

package extractor

import (
	"sort"
	"strings"

	"github.com/troncalnet/receipt_bot_whatsapp/configs"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
)

// UnknownBank is returned when no alias matches
const UnknownBank = "Entidad no identificada"

type bankEntry struct {
	name    string
	aliases []string // folded, longest first
}

func newBankTable(banks []configs.BankAliases) []bankEntry {
	table := make([]bankEntry, 0, len(banks))
	for _, b := range banks {
		aliases := common.FoldAll(b.Aliases)
		sort.SliceStable(aliases, func(i, j int) bool {
			return len(aliases[i]) > len(aliases[j])
		})
		table = append(table, bankEntry{name: b.Name, aliases: aliases})
	}
	return table
}

// IdentifyBank returns the first bank in declaration order with a matching alias
func (e *Extractor) IdentifyBank(text string) string {
	if text == "" {
		return UnknownBank
	}
	folded := common.Fold(text)
	for _, bank := range e.banks {
		for _, alias := range bank.aliases {
			if strings.Contains(folded, alias) {
				return bank.name
			}
		}
	}
	return UnknownBank
}

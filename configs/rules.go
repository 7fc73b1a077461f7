// rules.go - Heuristic vocabularies and thresholds (overridable via YAML)

package configs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BankAliases maps a canonical bank/cooperative name to the tokens that identify it
type BankAliases struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// IntentKeywords lists the phrases that vote for one intent
type IntentKeywords struct {
	Intent   string   `yaml:"intent"`
	Keywords []string `yaml:"keywords"`
}

// Rules holds every heuristic constant used by the classifier, extractor and matcher.
// Declaration order of Banks and Intents is significant: earlier entries win ties.
type Rules struct {
	CompanyToken         string   `yaml:"company_token"`
	CollectionPhrases    []string `yaml:"collection_phrases"`
	AuthorizedRecipients []string `yaml:"authorized_recipients"`

	TransactionKeywords []string `yaml:"transaction_keywords"`
	ReceiptBanks        []string `yaml:"receipt_banks"`
	FinancialTerms      []string `yaml:"financial_terms"`
	MinReceiptSignals   int      `yaml:"min_receipt_signals"`

	Banks   []BankAliases    `yaml:"banks"`
	Intents []IntentKeywords `yaml:"intents"`

	DocumentBankTokens []string `yaml:"document_bank_tokens"`
	DocumentLabels     []string `yaml:"document_labels"`

	UniqueMatchRatio   float64 `yaml:"unique_match_ratio"`
	MinNameQueryLength int     `yaml:"min_name_query_length"`
	MinCandidateScore  int     `yaml:"min_candidate_score"`
	MaxCandidates      int     `yaml:"max_candidates"`
	MaxChoiceButtons   int     `yaml:"max_choice_buttons"`
}

// DefaultRules returns the built-in vocabularies and thresholds
func DefaultRules() Rules {
	return Rules{
		CompanyToken: "troncalnet",
		CollectionPhrases: []string{
			"de recaudacion", "recaudaciones", "pago en efectivo", "empresa o servicio",
			"pago de servicio", "pago de servicios", "cuenta o contrato",
		},
		AuthorizedRecipients: []string{"rodriguez", "quinteros", "ismael"},

		TransactionKeywords: []string{"transferencia", "pago exitoso", "comprobante", "transaccion", "deposito", "transferido"},
		ReceiptBanks:        []string{"pichincha", "guayaquil", "produbanco", "jep", "jardin azuayo", "bolivariano", "pacifico", "internacional", "cb"},
		FinancialTerms:      []string{"cuenta", "monto", "valor", "fecha", "total", "efectivo", "documento", "nombre", "destino"},
		MinReceiptSignals:   3,

		Banks: []BankAliases{
			{Name: "Banco del Pacífico", Aliases: []string{"pacifico", "bancodelpacifico", "banco del pacifico", "bdp", "del pacifico"}},
			{Name: "Banco Pichincha", Aliases: []string{"pichincha", "banco pichincha"}},
			{Name: "Banco Guayaquil", Aliases: []string{"guayaquil", "bancoguayaquil", "banco guayaquil"}},
			{Name: "Produbanco", Aliases: []string{"produbanco", "prodomatico"}},
			{Name: "Banco Bolivariano", Aliases: []string{"bolivariano", "banco bolivariano"}},
			{Name: "Banco Internacional", Aliases: []string{"internacional", "banco internacional"}},
			{Name: "Banco Austro", Aliases: []string{"austro", "banco austro"}},
			{Name: "Cooperativa JEP", Aliases: []string{"jep", "coop. jep", "cooperativa jep"}},
			{Name: "Cooperativa Jardín Azuayo", Aliases: []string{"jardin azuayo", "cooperativa jardin azuayo"}},
			{Name: "Cooperativa Lucha Campesina", Aliases: []string{"lucha campesina", "cooperativa lucha campesina"}},
			{Name: "Cooperativa CB", Aliases: []string{"cooperativa cb", "cb en linea", "coop. cb", "coop cb", "cb cooperativa", "cb movil", "biblian"}},
		},

		Intents: []IntentKeywords{
			{Intent: "SIN_INTERNET", Keywords: []string{
				"sin internet", "no tengo internet", "internet lento", "falla el internet",
				"inestable", "no puedo navegar", "se me va el internet", "no hay servicio",
			}},
			{Intent: "SIN_TV", Keywords: []string{
				"sin señal", "no tengo canales", "falla la tele", "problema con el tvcable",
				"canales no se ven", "falla el cable",
			}},
			{Intent: "PROBLEMA_PAGO", Keywords: []string{
				"problema con mi pago", "no se registra mi pago", "pago no aplicado",
				"error en la factura", "cobro indebido", "inconveniente con el pago",
				"pague y no se refleja", "mi pago no aparece", "duda sobre mi pago",
				"error en el pago", "ya pague", "tengo un problema con un pago",
			}},
			{Intent: "INFO_PLANES", Keywords: []string{
				"informacion de planes", "quiero un plan", "que planes tienen",
				"aumentar megas", "cambiar de plan",
			}},
		},

		DocumentBankTokens: []string{"pichincha", "guayaquil", "produbanco", "jep", "jardin azuayo", "bolivariano", "pacifico", "internacional"},
		DocumentLabels:     []string{"numero", "codigo", "comprobante", "referencia"},

		UniqueMatchRatio:   4,
		MinNameQueryLength: 4,
		MinCandidateScore:  10,
		MaxCandidates:      5,
		MaxChoiceButtons:   3,
	}
}

// LoadRules returns DefaultRules overlaid with the YAML file at path (if any)
// and with the UNIQUE_MATCH_RATIO / MIN_RECEIPT_SIGNALS environment overrides.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return rules, fmt.Errorf("failed to read rules file: %w", err)
		}
		// yaml.Unmarshal only touches keys present in the file
		if err := yaml.Unmarshal(data, &rules); err != nil {
			return rules, fmt.Errorf("failed to parse rules file: %w", err)
		}
	}

	rules.UniqueMatchRatio = getEnvFloat("UNIQUE_MATCH_RATIO", rules.UniqueMatchRatio)
	rules.MinReceiptSignals = getEnvInt("MIN_RECEIPT_SIGNALS", rules.MinReceiptSignals)

	if rules.MinReceiptSignals < 1 || rules.MinReceiptSignals > 4 {
		return rules, fmt.Errorf("min_receipt_signals must be between 1 and 4, got %d", rules.MinReceiptSignals)
	}
	if rules.UniqueMatchRatio <= 0 {
		return rules, fmt.Errorf("unique_match_ratio must be positive, got %v", rules.UniqueMatchRatio)
	}
	return rules, nil
}

package shared

import "strings"

// Module names a ledger area that can be locked independently.
type Module string

const (
	ModuleSales      Module = "sales"
	ModulePurchases  Module = "purchases"
	ModuleBanking    Module = "banking"
	ModuleAccountant Module = "accountant"
)

// ParseModule normalises and checks a module name.
func ParseModule(raw string) (Module, error) {
	m := Module(strings.ToLower(strings.TrimSpace(raw)))
	switch m {
	case ModuleSales, ModulePurchases, ModuleBanking, ModuleAccountant:
		return m, nil
	case "":
		return ModuleAccountant, nil
	default:
		return "", Validationf("unknown module %q", raw)
	}
}

package leasing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
)

// GLAccount is a general-ledger account used to categorize lease charges
type GLAccount struct {
	shared.BaseEntity
	Name                       string
	AccountNumber              string
	Type                       string
	IsSecurityDepositLiability bool
	IsActive                   bool
}

// IsIncome reports whether the account is an income-type account
func (a *GLAccount) IsIncome() bool {
	return strings.EqualFold(a.Type, "income")
}

// DefaultRentAccount picks the default GL account for rent charges: the
// income account literally named "rent income" if present, else the
// first income account. Returns false when no income account exists.
func DefaultRentAccount(accounts []GLAccount) (uuid.UUID, bool) {
	var first uuid.UUID
	found := false
	for i := range accounts {
		acc := &accounts[i]
		if !acc.IsIncome() {
			continue
		}
		if strings.EqualFold(acc.Name, "rent income") {
			return acc.ID, true
		}
		if !found {
			first = acc.ID
			found = true
		}
	}
	return first, found
}

// DefaultDepositAccount picks the default GL account for security
// deposits: accounts flagged as security-deposit liabilities are
// preferred; within the candidate set, the first whose name contains
// "deposit" wins, else the first candidate. Returns false when no
// accounts exist at all.
func DefaultDepositAccount(accounts []GLAccount) (uuid.UUID, bool) {
	if len(accounts) == 0 {
		return uuid.Nil, false
	}

	candidates := make([]*GLAccount, 0, len(accounts))
	for i := range accounts {
		if accounts[i].IsSecurityDepositLiability {
			candidates = append(candidates, &accounts[i])
		}
	}
	if len(candidates) == 0 {
		for i := range accounts {
			candidates = append(candidates, &accounts[i])
		}
	}

	for _, acc := range candidates {
		if strings.Contains(strings.ToLower(acc.Name), "deposit") {
			return acc.ID, true
		}
	}
	return candidates[0].ID, true
}

// ResolveChargeDefaults fills the rent and deposit GL accounts on the
// form from the loaded account list. It never overwrites an account the
// user already picked; it is safe to call again when accounts reload.
func ResolveChargeDefaults(accounts []GLAccount, form *ChargeForm) {
	if form.RentGLAccountID == uuid.Nil {
		if id, ok := DefaultRentAccount(accounts); ok {
			form.RentGLAccountID = id
		}
	}
	if form.DepositGLAccountID == uuid.Nil {
		if id, ok := DefaultDepositAccount(accounts); ok {
			form.DepositGLAccountID = id
		}
	}
}

// HasIncomeAccount reports whether any income-type account is available
func HasIncomeAccount(accounts []GLAccount) bool {
	for i := range accounts {
		if accounts[i].IsIncome() {
			return true
		}
	}
	return false
}

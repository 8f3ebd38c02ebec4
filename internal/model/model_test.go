package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMaskAccountNumber(t *testing.T) {
	tests := []struct {
		number string
		want   string
	}{
		{"123456789", "****6789"},
		{"1234-5678-9012", "****9012"},
		{"1234", "****1234"},
		{"****6789", "****6789"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskAccountNumber(tt.number), "MaskAccountNumber(%q)", tt.number)
	}
}

func TestAccountTypeValid(t *testing.T) {
	for _, at := range []AccountType{AccountTypeChecking, AccountTypeSavings, AccountTypeCredit, AccountTypeInvestment} {
		assert.True(t, at.Valid(), "%s should be valid", at)
	}
	assert.False(t, AccountType("brokerage").Valid())
}

func TestTransactionSign(t *testing.T) {
	expense := Transaction{Amount: decimal.RequireFromString("-12.50")}
	assert.True(t, expense.IsExpense())
	assert.False(t, expense.IsIncome())

	income := Transaction{Amount: decimal.RequireFromString("2500")}
	assert.True(t, income.IsIncome())
	assert.False(t, income.IsExpense())

	zero := Transaction{}
	assert.False(t, zero.IsExpense())
	assert.False(t, zero.IsIncome())
}

func TestAccountIsConnected(t *testing.T) {
	ref := "item-123"
	empty := ""
	assert.True(t, Account{ExternalRef: &ref}.IsConnected())
	assert.False(t, Account{ExternalRef: &empty}.IsConnected())
	assert.False(t, Account{}.IsConnected())
}

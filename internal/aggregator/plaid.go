package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/plaid/plaid-go/v41/plaid"
	"github.com/shopspring/decimal"
)

// pageSize is the TransactionsGet page size; Plaid caps it at 500.
const pageSize = 500

// Plaid is a Client backed by the Plaid API.
type Plaid struct {
	api *plaid.APIClient
}

var _ Client = (*Plaid)(nil)

// NewPlaid builds a Plaid client for env ("sandbox" or "production").
func NewPlaid(clientID, secret, env string) (*Plaid, error) {
	if clientID == "" || secret == "" {
		return nil, fmt.Errorf("plaid client id and secret are required")
	}

	cfg := plaid.NewConfiguration()
	cfg.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	cfg.AddDefaultHeader("PLAID-SECRET", secret)

	switch env {
	case "", "sandbox":
		cfg.UseEnvironment(plaid.Sandbox)
	case "production":
		cfg.UseEnvironment(plaid.Production)
	default:
		return nil, fmt.Errorf("invalid plaid environment %q", env)
	}

	return &Plaid{api: plaid.NewAPIClient(cfg)}, nil
}

// CreateLinkToken starts a Link session for userID.
func (p *Plaid) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	req := plaid.NewLinkTokenCreateRequest(
		"Finboard",
		"en",
		[]plaid.CountryCode{plaid.COUNTRYCODE_US},
	)
	req.SetUser(plaid.LinkTokenCreateRequestUser{ClientUserId: userID})
	req.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})

	resp, _, err := p.api.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*req).Execute()
	if err != nil {
		return "", fmt.Errorf("create link token: %w", err)
	}
	return resp.GetLinkToken(), nil
}

// ExchangePublicToken trades a Link public token for a long-lived access token.
func (p *Plaid) ExchangePublicToken(ctx context.Context, publicToken string) (Exchange, error) {
	req := plaid.NewItemPublicTokenExchangeRequest(publicToken)
	resp, _, err := p.api.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*req).Execute()
	if err != nil {
		return Exchange{}, fmt.Errorf("exchange public token: %w", err)
	}
	return Exchange{AccessToken: resp.GetAccessToken(), ItemID: resp.GetItemId()}, nil
}

// FetchAccounts lists the accounts behind an access token.
func (p *Plaid) FetchAccounts(ctx context.Context, accessToken string) ([]Account, error) {
	req := plaid.NewAccountsGetRequest(accessToken)
	resp, _, err := p.api.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*req).Execute()
	if err != nil {
		return nil, fmt.Errorf("fetch accounts: %w", err)
	}

	var out []Account
	for _, a := range resp.GetAccounts() {
		balances := a.GetBalances()
		out = append(out, Account{
			ID:      a.GetAccountId(),
			Name:    a.GetName(),
			Mask:    a.GetMask(),
			Type:    string(a.GetType()),
			Subtype: string(a.GetSubtype()),
			Balance: decimal.NewFromFloat(balances.GetCurrent()),
		})
	}
	return out, nil
}

// FetchTransactions pages through TransactionsGet for [start, end].
func (p *Plaid) FetchTransactions(ctx context.Context, accessToken string, start, end time.Time) ([]Transaction, error) {
	var out []Transaction
	for {
		opts := plaid.NewTransactionsGetRequestOptions()
		opts.SetCount(pageSize)
		opts.SetOffset(int32(len(out)))

		req := plaid.NewTransactionsGetRequest(accessToken, start.Format(time.DateOnly), end.Format(time.DateOnly))
		req.SetOptions(*opts)

		resp, _, err := p.api.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*req).Execute()
		if err != nil {
			return nil, fmt.Errorf("fetch transactions (offset %d): %w", len(out), err)
		}

		page := resp.GetTransactions()
		for _, tx := range page {
			date, err := parseDate(tx.GetDate())
			if err != nil {
				return nil, err
			}
			out = append(out, Transaction{
				ID:        tx.GetTransactionId(),
				AccountID: tx.GetAccountId(),
				Date:      date,
				Name:      tx.GetName(),
				Merchant:  tx.GetMerchantName(),
				Amount:    decimal.NewFromFloat(tx.GetAmount()),
				Pending:   tx.GetPending(),
			})
		}

		if len(page) == 0 || len(out) >= int(resp.GetTotalTransactions()) {
			return out, nil
		}
	}
}

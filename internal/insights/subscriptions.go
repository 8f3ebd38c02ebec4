package insights

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finboard/internal/model"
)

type service struct {
	keyword string
	name    string
}

// streamingServices is checked in order; a transaction counts toward the
// first service it matches.
var streamingServices = []service{
	{"netflix", "Netflix"},
	{"spotify", "Spotify"},
	{"hulu", "Hulu"},
	{"disney+", "Disney+"},
	{"hbo max", "HBO Max"},
	{"amazon prime", "Amazon Prime"},
	{"apple music", "Apple Music"},
	{"youtube premium", "YouTube Premium"},
	{"paramount+", "Paramount+"},
	{"peacock", "Peacock"},
}

const minOverlappingServices = 3

var subscriptionSavingsRate = decimal.RequireFromString("0.4")

func subscriptionOverlap(txs []model.Transaction) (model.Insight, bool) {
	var found []string
	seen := make(map[string]bool)
	total := decimal.Zero

	for _, tx := range txs {
		text := strings.ToLower(tx.Description + " " + tx.Merchant)
		for _, svc := range streamingServices {
			if !strings.Contains(text, svc.keyword) {
				continue
			}
			total = total.Add(tx.Amount.Abs())
			if !seen[svc.name] {
				seen[svc.name] = true
				found = append(found, svc.name)
			}
			break
		}
	}

	if len(found) < minOverlappingServices {
		return model.Insight{}, false
	}

	saving := total.Mul(subscriptionSavingsRate).Round(0)
	named := found[:minOverlappingServices]
	return model.Insight{
		Title: "Overlapping streaming subscriptions",
		Description: fmt.Sprintf(
			"You're paying for %d streaming services, including %s, %s and %s. Rotating them instead of keeping all active could save about $%s per month.",
			len(found), named[0], named[1], named[2], dollars(saving)),
		SavingsAmount: savings(saving),
		Type:          model.InsightSubscription,
		ActionLink:    LinkSubscriptions,
	}, true
}

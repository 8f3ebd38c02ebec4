package categorize

import "github.com/cleared-dev/finboard/internal/model"

// Category names of the built-in taxonomy.
const (
	Housing        = "Housing"
	Food           = "Food"
	Transportation = "Transportation"
	Shopping       = "Shopping"
	Utilities      = "Utilities"
	Healthcare     = "Healthcare"
	Entertainment  = "Entertainment"
	Education      = "Education"
	Travel         = "Travel"
	Income         = "Income"
	Other          = "Other"
)

// Rule maps a set of lower-case keywords to a category.
type Rule struct {
	Category string
	Keywords []string
}

// rules is evaluated top to bottom and the first match wins. "gas" appears
// under both Transportation and Utilities; Transportation comes first.
var rules = []Rule{
	{Housing, []string{"rent", "mortgage", "hoa", "property tax", "apartment", "lease", "home depot", "lowes"}},
	{Food, []string{"restaurant", "grocery", "groceries", "cafe", "coffee", "starbucks", "mcdonald", "chipotle", "pizza", "burger", "doordash", "grubhub", "uber eats", "whole foods", "trader joe", "safeway", "kroger", "bakery", "dining"}},
	{Transportation, []string{"uber", "lyft", "taxi", "gas", "shell", "chevron", "exxon", "fuel", "parking", "toll", "transit", "metro", "subway", "car wash"}},
	{Shopping, []string{"amazon", "walmart", "target", "best buy", "ebay", "etsy", "costco", "ikea", "mall", "clothing"}},
	{Utilities, []string{"electric", "water", "gas", "internet", "comcast", "xfinity", "verizon", "at&t", "t-mobile", "phone", "utility", "power"}},
	{Healthcare, []string{"pharmacy", "cvs", "walgreens", "doctor", "hospital", "medical", "dental", "clinic", "health", "vision"}},
	{Entertainment, []string{"netflix", "spotify", "hulu", "disney", "hbo", "youtube", "movie", "cinema", "theater", "concert", "steam", "playstation", "xbox", "ticketmaster"}},
	{Education, []string{"tuition", "school", "university", "college", "course", "udemy", "coursera", "textbook"}},
	{Travel, []string{"airline", "airlines", "hotel", "airbnb", "expedia", "booking.com", "flight", "marriott", "hilton", "delta air"}},
	{Income, []string{"salary", "payroll", "paycheck", "direct deposit", "dividend", "interest"}},
}

// Rules returns a copy of the ordered rule table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = Rule{Category: r.Category, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

var colors = map[string]string{
	Housing:        "#8B5CF6",
	Food:           "#F59E0B",
	Transportation: "#3B82F6",
	Shopping:       "#EC4899",
	Utilities:      "#10B981",
	Healthcare:     "#EF4444",
	Entertainment:  "#6366F1",
	Education:      "#14B8A6",
	Travel:         "#F97316",
	Income:         "#22C55E",
	Other:          "#6B7280",
}

// DefaultCategories returns the seed taxonomy in rule order, followed by Other.
func DefaultCategories() []model.Category {
	cats := make([]model.Category, 0, len(rules)+1)
	for _, r := range Rules() {
		cats = append(cats, model.Category{Name: r.Category, Color: colors[r.Category], Keywords: r.Keywords})
	}
	return append(cats, model.Category{Name: Other, Color: colors[Other]})
}

// IsKnown reports whether name is part of the built-in taxonomy.
func IsKnown(name string) bool {
	_, ok := colors[name]
	return ok
}

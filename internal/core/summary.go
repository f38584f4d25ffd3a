package core

// CategoryStat is one row of a category breakdown.
type CategoryStat struct {
	Category   Category `json:"category"`
	TotalCents int64    `json:"totalCents"`
	Percentage float64  `json:"percentage"`
}

// DayStat carries the month's whole income on every day of the month.
type DayStat struct {
	Day           int   `json:"day"`
	TotalExpenses int64 `json:"totalExpenses"`
	Income        int64 `json:"income"`
}

type MonthStat struct {
	Month         int   `json:"month"`
	TotalExpenses int64 `json:"totalExpenses"`
	Income        int64 `json:"income"`
	Balance       int64 `json:"balance"`
}

type YearStat struct {
	Year          int   `json:"year"`
	TotalExpenses int64 `json:"totalExpenses"`
	TotalIncome   int64 `json:"totalIncome"`
	Balance       int64 `json:"balance"`
}

// CategoryDisplay is presentation metadata for a category.
type CategoryDisplay struct {
	Value Category `json:"value"`
	Label string   `json:"label"`
	Color string   `json:"color"`
}

var categoryPalette = map[Category]string{
	CategoryHousing:        "#FF6B6B",
	CategoryGroceries:      "#4ECDC4",
	CategoryUtilities:      "#45B7D1",
	CategoryFoodDining:     "#96CEB4",
	CategorySubscriptions:  "#FFEAA7",
	CategoryTransportation: "#DDA0DD",
	CategoryShopping:       "#98D8C8",
	CategoryHealthcare:     "#F0A500",
	CategoryEntertainment:  "#FF8B94",
	CategoryTravel:         "#A8E6CF",
	CategoryOther:          "#B0B0B0",
}

// CategoryDisplayTable returns display metadata for every category in display order.
func CategoryDisplayTable() []CategoryDisplay {
	out := make([]CategoryDisplay, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryDisplay{Value: c, Label: string(c), Color: categoryPalette[c]})
	}
	return out
}

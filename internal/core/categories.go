package core

// Category is one label of the closed expense category set.
type Category string

const (
	CategoryHousing        Category = "Rent / Housing"
	CategoryGroceries      Category = "Groceries"
	CategoryUtilities      Category = "Utilities"
	CategoryFoodDining     Category = "Food & Dining"
	CategorySubscriptions  Category = "Subscriptions"
	CategoryTransportation Category = "Transportation"
	CategoryShopping       Category = "Shopping"
	CategoryHealthcare     Category = "Healthcare"
	CategoryEntertainment  Category = "Entertainment"
	CategoryTravel         Category = "Travel"
	CategoryOther          Category = "Other"
)

var categories = []Category{
	CategoryHousing,
	CategoryGroceries,
	CategoryUtilities,
	CategoryFoodDining,
	CategorySubscriptions,
	CategoryTransportation,
	CategoryShopping,
	CategoryHealthcare,
	CategoryEntertainment,
	CategoryTravel,
	CategoryOther,
}

// Categories returns the known categories in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory returns the category matching s exactly.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", NewValidationError("category", "must be one of the known categories")
	}
	return c, nil
}

package service

// Item categories and the code prefix each one allocates under.
const (
	CategoryMeat         = "Meat"
	CategorySeafood      = "Seafood"
	CategoryPreparedFood = "Prepared Food"
	CategoryEggsDairy    = "Eggs & Dairy"
	CategoryDryGoods     = "Dry Goods"

	// OtherPrefix is used for any category outside the table.
	OtherPrefix = "OT"
)

var categoryPrefixes = map[string]string{
	CategoryMeat:         "MT",
	CategorySeafood:      "SP",
	CategoryPreparedFood: "SF",
	CategoryEggsDairy:    "VG",
	CategoryDryGoods:     "DG",
}

// Categories lists the known categories in display order.
func Categories() []string {
	return []string{CategoryMeat, CategorySeafood, CategoryPreparedFood, CategoryEggsDairy, CategoryDryGoods}
}

// PrefixFor maps a category to its item code prefix.
func PrefixFor(category string) string {
	if p, ok := categoryPrefixes[category]; ok {
		return p
	}
	return OtherPrefix
}

package domain

// Category is one of the fixed product categories
type Category string

const (
	CategoryAlimentos  Category = "alimentos"
	CategoryBebidas    Category = "bebidas"
	CategoryLimpeza    Category = "limpeza"
	CategoryHigiene    Category = "higiene"
	CategoryFrios      Category = "frios"
	CategoryHortifruti Category = "hortifruti"
	CategoryPadaria    Category = "padaria"
	CategoryCarnes     Category = "carnes"
)

// CategoryInfo is a category with its display label
type CategoryInfo struct {
	ID    Category `json:"id"`
	Label string   `json:"label"`
}

// Categories in display order.
var Categories = []CategoryInfo{
	{ID: CategoryAlimentos, Label: "Alimentos"},
	{ID: CategoryHortifruti, Label: "Hortifruti"},
	{ID: CategoryCarnes, Label: "Carnes"},
	{ID: CategoryPadaria, Label: "Padaria"},
	{ID: CategoryBebidas, Label: "Bebidas"},
	{ID: CategoryLimpeza, Label: "Limpeza"},
	{ID: CategoryHigiene, Label: "Higiene"},
	{ID: CategoryFrios, Label: "Frios"},
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, info := range Categories {
		if info.ID == c {
			return true
		}
	}
	return false
}

// ParseCategory converts user input into a Category.
// An empty string means "all categories" and returns nil.
func ParseCategory(s string) (*Category, error) {
	if s == "" {
		return nil, nil
	}
	c := Category(s)
	if !c.Valid() {
		return nil, ErrUnknownCategory
	}
	return &c, nil
}

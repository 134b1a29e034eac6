package model

// Requirement is a single ingredient line of a recipe. Qty is in fluid
// ounces; zero marks a garnish or solid that is checked for availability but
// never poured.
type Requirement struct {
	Name string  `json:"item"`
	Qty  float64 `json:"qty_oz"`
}

// Recipe describes a drink: an identifier, a display name and an ordered
// list of requirements.
type Recipe struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Instructions string        `json:"instructions,omitempty"`
	Ingredients  []Requirement `json:"ingredients"`
}

// SourceKind identifies where a resolved ingredient comes from.
type SourceKind int

const (
	// SourceSlot binds an ingredient to a turret slot; it can be poured.
	SourceSlot SourceKind = iota
	// SourcePantry binds an ingredient to the pantry; it must be added by hand.
	SourcePantry
)

func (k SourceKind) String() string {
	switch k {
	case SourceSlot:
		return "slot"
	case SourcePantry:
		return "pantry"
	default:
		return "unknown"
	}
}

// Binding ties one recipe requirement to a concrete source. Slot is only
// meaningful when Kind is SourceSlot. Resolved carries the ingredient that
// actually satisfies the requirement, which differs from the requirement name
// when a substitution applied.
type Binding struct {
	Ingredient string     `json:"ingredient"`
	Resolved   string     `json:"resolved"`
	Kind       SourceKind `json:"kind"`
	Slot       int        `json:"slot"`
	Qty        float64    `json:"qty_oz"`
}

// Pourable reports whether the binding can be dispensed by the turret.
func (b Binding) Pourable() bool { return b.Kind == SourceSlot }

// ResolvedRecipe is a recipe together with the outcome of availability
// resolution. When Makeable is false, Missing holds the first unsatisfied
// ingredient (resolution short-circuits) and Bindings the requirements
// resolved before the failure point.
type ResolvedRecipe struct {
	Recipe   Recipe    `json:"recipe"`
	Makeable bool      `json:"makeable"`
	Bindings []Binding `json:"bindings,omitempty"`
	Missing  []string  `json:"missing,omitempty"`
}

package domain

// Nutrients is a calories/macros tuple, used both for a dish's nutritional
// info and for aggregated daily totals.
type Nutrients struct {
	Calories     float64 `bson:"calories" json:"calories"`
	Protein      float64 `bson:"protein" json:"protein"`
	Carbohydrate float64 `bson:"carbohydrate" json:"carbohydrate"`
	Fat          float64 `bson:"fat" json:"fat"`
}

func (n Nutrients) Add(o Nutrients) Nutrients {
	return Nutrients{
		Calories:     n.Calories + o.Calories,
		Protein:      n.Protein + o.Protein,
		Carbohydrate: n.Carbohydrate + o.Carbohydrate,
		Fat:          n.Fat + o.Fat,
	}
}

// DishLookup resolves dish references during aggregation.
type DishLookup interface {
	LookupDish(id string) (Dish, bool)
}

// DishIndex is an in-memory DishLookup keyed by the dish id hex string.
type DishIndex map[string]Dish

func NewDishIndex(dishes []Dish) DishIndex {
	idx := make(DishIndex, len(dishes))
	for _, d := range dishes {
		idx[d.ID.Hex()] = d
	}
	return idx
}

func (i DishIndex) LookupDish(id string) (Dish, bool) {
	d, ok := i[id]
	return d, ok
}

// DayTotals sums the nutritional info of the entries placed on (week, day).
// Entries whose dish cannot be resolved contribute nothing.
func DayTotals(lookup DishLookup, entries []DishEntry, week, day int) Nutrients {
	var total Nutrients
	for _, e := range entries {
		if !e.At(week, day) {
			continue
		}
		dish, ok := lookup.LookupDish(e.DishID)
		if !ok {
			continue
		}
		total = total.Add(dish.NutritionalInfo)
	}
	return total
}

// ProgressRatio is total/target capped at 1. A zero target means no target is
// configured and always yields 0.
func ProgressRatio(total, target float64) float64 {
	if target <= 0 {
		return 0
	}
	r := total / target
	if r > 1 {
		return 1
	}
	if r < 0 {
		return 0
	}
	return r
}

// AdherenceStatus classifies a total against its target.
type AdherenceStatus string

const (
	AdherenceNoTarget AdherenceStatus = "no_target"
	AdherenceUnder    AdherenceStatus = "under"     // up to 80% of target
	AdherenceOnTarget AdherenceStatus = "on_target" // above 80% up to 100%
	AdherenceOver     AdherenceStatus = "over"      // above 100%
)

func Adherence(total, target float64) AdherenceStatus {
	if target <= 0 {
		return AdherenceNoTarget
	}
	pct := total / target * 100
	switch {
	case pct <= 80:
		return AdherenceUnder
	case pct <= 100:
		return AdherenceOnTarget
	default:
		return AdherenceOver
	}
}

// NutrientProgress is the adherence of one nutrient for one day.
type NutrientProgress struct {
	Total  float64         `json:"total"`
	Target float64         `json:"target"`
	Ratio  float64         `json:"ratio"`
	Status AdherenceStatus `json:"status"`
}

func progressOf(total, target float64) NutrientProgress {
	return NutrientProgress{
		Total:  total,
		Target: target,
		Ratio:  ProgressRatio(total, target),
		Status: Adherence(total, target),
	}
}

// DayAdherence compares one day's totals with the plan targets.
type DayAdherence struct {
	Calories     NutrientProgress `json:"calories"`
	Protein      NutrientProgress `json:"protein"`
	Carbohydrate NutrientProgress `json:"carbohydrate"`
	Fat          NutrientProgress `json:"fat"`
}

func CompareToTargets(totals Nutrients, targets NutritionTargets) DayAdherence {
	return DayAdherence{
		Calories:     progressOf(totals.Calories, targets.Calories),
		Protein:      progressOf(totals.Protein, targets.Protein),
		Carbohydrate: progressOf(totals.Carbohydrate, targets.Carbohydrate),
		Fat:          progressOf(totals.Fat, targets.Fat),
	}
}

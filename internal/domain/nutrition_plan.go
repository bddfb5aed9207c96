package domain

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealType names a meal slot within a day. Any non-empty value is accepted;
// these are the slots the coaching screens offer.
type MealType string

const (
	MealBreakfast  MealType = "desayuno"
	MealMidMorning MealType = "media_manana"
	MealLunch      MealType = "almuerzo"
	MealAfternoon  MealType = "merienda"
	MealDinner     MealType = "cena"
	MealSnack      MealType = "snack"
)

// DishEntry binds a dish to a (weekNumber, dayOfWeek, mealType) slot. Presence
// of the entry is its only state.
type DishEntry struct {
	DishID     string   `bson:"dishId" json:"dishId"`
	MealType   MealType `bson:"mealType" json:"mealType"`
	WeekNumber int      `bson:"weekNumber" json:"weekNumber"`
	DayOfWeek  int      `bson:"dayOfWeek" json:"dayOfWeek"`
}

// At reports whether the entry sits on the given week and day.
func (e DishEntry) At(week, day int) bool {
	return e.WeekNumber == week && e.DayOfWeek == day
}

// NutritionTargets are daily targets; 0 means no target is configured.
type NutritionTargets struct {
	Calories     float64 `bson:"calories" json:"calories"`
	Protein      float64 `bson:"protein" json:"protein"`
	Carbohydrate float64 `bson:"carbohydrate" json:"carbohydrate"`
	Fat          float64 `bson:"fat" json:"fat"`
}

func (t NutritionTargets) validate() error {
	if t.Calories < 0 || t.Protein < 0 || t.Carbohydrate < 0 || t.Fat < 0 {
		return fmt.Errorf("%w: nutrition targets must not be negative", ErrValidation)
	}
	return nil
}

// NutritionPlan spans TotalWeeks weeks and keeps coach recommendations and
// client selections as two separate collections over the same addressing.
type NutritionPlan struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID    string             `bson:"organizationId" json:"organizationId"`
	CoachID           string             `bson:"coachId" json:"coachId"`
	ClientID          string             `bson:"clientId" json:"clientId"`
	Name              string             `bson:"name" json:"name"`
	TotalWeeks        int                `bson:"totalWeeks" json:"totalWeeks"`
	IsActive          bool               `bson:"isActive" json:"isActive"`
	Targets           NutritionTargets   `bson:"targets" json:"targets"`
	Notes             string             `bson:"notes,omitempty" json:"notes,omitempty"`
	RecommendedDishes []DishEntry        `bson:"recommendedDishes" json:"recommendedDishes"`
	ClientSelections  []DishEntry        `bson:"clientSelections" json:"clientSelections"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type NutritionPlanInput struct {
	OrganizationID string
	CoachID        string
	ClientID       string
	Name           string
	TotalWeeks     int
	IsActive       bool
	Targets        NutritionTargets
	Notes          string
}

func NewNutritionPlan(in NutritionPlanInput) (*NutritionPlan, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: plan name is required", ErrValidation)
	}
	if strings.TrimSpace(in.ClientID) == "" {
		return nil, fmt.Errorf("%w: clientId is required", ErrValidation)
	}
	if in.TotalWeeks < 1 {
		return nil, fmt.Errorf("%w: totalWeeks must be at least 1", ErrValidation)
	}
	if err := in.Targets.validate(); err != nil {
		return nil, err
	}
	return &NutritionPlan{
		ID:                primitive.NewObjectID(),
		OrganizationID:    in.OrganizationID,
		CoachID:           in.CoachID,
		ClientID:          in.ClientID,
		Name:              strings.TrimSpace(in.Name),
		TotalWeeks:        in.TotalWeeks,
		IsActive:          in.IsActive,
		Targets:           in.Targets,
		Notes:             in.Notes,
		RecommendedDishes: []DishEntry{},
		ClientSelections:  []DishEntry{},
	}, nil
}

func (p *NutritionPlan) checkWeek(week int) error {
	if week < 1 || week > p.TotalWeeks {
		return fmt.Errorf("%w: weekNumber %d is outside 1..%d", ErrValidation, week, p.TotalWeeks)
	}
	return nil
}

// CheckDay validates a (weekNumber, dayOfWeek) address against the plan.
func (p *NutritionPlan) CheckDay(week, day int) error {
	if err := p.checkWeek(week); err != nil {
		return err
	}
	if !ValidDay(day) {
		return fmt.Errorf("%w: dayOfWeek %d is outside 0..6", ErrValidation, day)
	}
	return nil
}

func (p *NutritionPlan) checkEntry(e DishEntry) error {
	if strings.TrimSpace(e.DishID) == "" {
		return fmt.Errorf("%w: dishId is required", ErrValidation)
	}
	if strings.TrimSpace(string(e.MealType)) == "" {
		return fmt.Errorf("%w: mealType is required", ErrValidation)
	}
	return p.CheckDay(e.WeekNumber, e.DayOfWeek)
}

// Recommend appends a coach recommendation and returns its index. Identical
// entries are allowed and each one is kept.
func (p *NutritionPlan) Recommend(e DishEntry) (int, error) {
	if err := p.checkEntry(e); err != nil {
		return 0, err
	}
	p.RecommendedDishes = append(p.RecommendedDishes, e)
	return len(p.RecommendedDishes) - 1, nil
}

// Unrecommend removes the recommendation at index, so duplicate entries can be
// removed one at a time.
func (p *NutritionPlan) Unrecommend(index int) error {
	if index < 0 || index >= len(p.RecommendedDishes) {
		return fmt.Errorf("%w: no recommended dish at index %d", ErrNotFound, index)
	}
	kept := make([]DishEntry, 0, len(p.RecommendedDishes)-1)
	kept = append(kept, p.RecommendedDishes[:index]...)
	kept = append(kept, p.RecommendedDishes[index+1:]...)
	p.RecommendedDishes = kept
	return nil
}

// Select toggles a client selection: an absent entry is added, a present one
// is removed. It reports whether the entry is selected afterwards.
func (p *NutritionPlan) Select(e DishEntry) (bool, error) {
	if err := p.checkEntry(e); err != nil {
		return false, err
	}
	if p.isSelected(e) {
		p.ClientSelections = without(p.ClientSelections, e)
		return false, nil
	}
	p.ClientSelections = append(p.ClientSelections, e)
	return true, nil
}

// Deselect removes a client selection; deselecting an absent entry is a no-op.
func (p *NutritionPlan) Deselect(e DishEntry) error {
	if err := p.checkEntry(e); err != nil {
		return err
	}
	p.ClientSelections = without(p.ClientSelections, e)
	return nil
}

func (p *NutritionPlan) isSelected(e DishEntry) bool {
	for _, s := range p.ClientSelections {
		if s == e {
			return true
		}
	}
	return false
}

// CopyWeek replaces every recommendation of targetWeek with copies of the
// recommendations of sourceWeek.
func (p *NutritionPlan) CopyWeek(sourceWeek, targetWeek int) error {
	if sourceWeek == targetWeek {
		return fmt.Errorf("%w: source and target week are both %d", ErrValidation, sourceWeek)
	}
	if err := p.checkWeek(sourceWeek); err != nil {
		return err
	}
	if err := p.checkWeek(targetWeek); err != nil {
		return err
	}

	next := make([]DishEntry, 0, len(p.RecommendedDishes))
	var copies []DishEntry
	for _, e := range p.RecommendedDishes {
		if e.WeekNumber == sourceWeek {
			c := e
			c.WeekNumber = targetWeek
			copies = append(copies, c)
		}
		if e.WeekNumber != targetWeek {
			next = append(next, e)
		}
	}
	p.RecommendedDishes = append(next, copies...)
	return nil
}

// SetTotalWeeks changes the plan length and prunes recommendations beyond the
// new bound. Client selections are left as they are.
func (p *NutritionPlan) SetTotalWeeks(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: totalWeeks must be at least 1", ErrValidation)
	}
	kept := make([]DishEntry, 0, len(p.RecommendedDishes))
	for _, e := range p.RecommendedDishes {
		if e.WeekNumber <= n {
			kept = append(kept, e)
		}
	}
	p.RecommendedDishes = kept
	p.TotalWeeks = n
	return nil
}

// UpdateTargets replaces the daily targets and notes.
func (p *NutritionPlan) UpdateTargets(t NutritionTargets, notes string) error {
	if err := t.validate(); err != nil {
		return err
	}
	p.Targets = t
	p.Notes = notes
	return nil
}

// RecommendedOn returns the recommendations of one day.
func (p *NutritionPlan) RecommendedOn(week, day int) []DishEntry {
	return entriesAt(p.RecommendedDishes, week, day)
}

// SelectedOn returns the client selections of one day.
func (p *NutritionPlan) SelectedOn(week, day int) []DishEntry {
	return entriesAt(p.ClientSelections, week, day)
}

// DishIDs lists the distinct dishes referenced by either collection on one day.
func (p *NutritionPlan) DishIDs(week, day int) []string {
	var ids []string
	for _, e := range p.RecommendedOn(week, day) {
		ids = append(ids, e.DishID)
	}
	for _, e := range p.SelectedOn(week, day) {
		ids = append(ids, e.DishID)
	}
	return uniqueStrings(ids)
}

func entriesAt(entries []DishEntry, week, day int) []DishEntry {
	out := []DishEntry{}
	for _, e := range entries {
		if e.At(week, day) {
			out = append(out, e)
		}
	}
	return out
}

func without(entries []DishEntry, e DishEntry) []DishEntry {
	kept := make([]DishEntry, 0, len(entries))
	for _, s := range entries {
		if s != e {
			kept = append(kept, s)
		}
	}
	return kept
}

// GroupByMeal groups entries by meal slot, preserving their relative order.
func GroupByMeal(entries []DishEntry) map[MealType][]DishEntry {
	groups := make(map[MealType][]DishEntry)
	for _, e := range entries {
		groups[e.MealType] = append(groups[e.MealType], e)
	}
	return groups
}

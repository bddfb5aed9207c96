package domain

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DaysPerWeek is the fixed week length; dayOfWeek 0 is Sunday.
const DaysPerWeek = 7

// ValidDay reports whether day is a dayOfWeek in 0..6.
func ValidDay(day int) bool {
	return day >= 0 && day < DaysPerWeek
}

// DaySession assigns one Session to one weekday of a WeeklyPlan and tracks
// its completion. Completed and CompletedExercises are independent: neither
// is derived from the other.
type DaySession struct {
	SessionID          primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	Completed          bool               `bson:"completed" json:"completed"`
	Notes              string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CompletedExercises []string           `bson:"completedExercises" json:"completedExercises"`
}

func (d *DaySession) exerciseCompleted(id string) bool {
	for _, v := range d.CompletedExercises {
		if v == id {
			return true
		}
	}
	return false
}

// WeeklyPlan maps each day of one week, for one client, to at most one Session.
type WeeklyPlan struct {
	ID             primitive.ObjectID       `bson:"_id,omitempty" json:"id"`
	OrganizationID string                   `bson:"organizationId" json:"organizationId"`
	CoachID        string                   `bson:"coachId" json:"coachId"`
	ClientID       string                   `bson:"clientId" json:"clientId"`
	Name           string                   `bson:"name" json:"name"`
	StartDate      time.Time                `bson:"startDate" json:"startDate"`
	EndDate        time.Time                `bson:"endDate" json:"endDate"`
	IsActive       bool                     `bson:"isActive" json:"isActive"`
	FormTemplateID string                   `bson:"formTemplateId,omitempty" json:"formTemplateId,omitempty"`
	Days           [DaysPerWeek]*DaySession `bson:"days" json:"days"`
	CreatedAt      time.Time                `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time                `bson:"updatedAt" json:"updatedAt"`
}

// WeeklyPlanInput carries everything needed to create a WeeklyPlan. Days maps
// dayOfWeek to the Session assigned on that day.
type WeeklyPlanInput struct {
	OrganizationID string
	CoachID        string
	ClientID       string
	Name           string
	StartDate      time.Time
	EndDate        time.Time
	IsActive       bool
	FormTemplateID string
	Days           map[int]primitive.ObjectID
}

// DateOnly truncates t to midnight of its calendar date, expressed in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func NewWeeklyPlan(in WeeklyPlanInput) (*WeeklyPlan, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: plan name is required", ErrValidation)
	}
	if strings.TrimSpace(in.ClientID) == "" {
		return nil, fmt.Errorf("%w: clientId is required", ErrValidation)
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: startDate and endDate are required", ErrValidation)
	}
	start, end := DateOnly(in.StartDate), DateOnly(in.EndDate)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: endDate %s is before startDate %s", ErrValidation,
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	plan := &WeeklyPlan{
		ID:             primitive.NewObjectID(),
		OrganizationID: in.OrganizationID,
		CoachID:        in.CoachID,
		ClientID:       in.ClientID,
		Name:           strings.TrimSpace(in.Name),
		StartDate:      start,
		EndDate:        end,
		IsActive:       in.IsActive,
		FormTemplateID: strings.TrimSpace(in.FormTemplateID),
	}
	for day, sessionID := range in.Days {
		if err := plan.AssignDay(day, sessionID, ""); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

// Day returns the DaySession on day or a NotFound error when nothing is assigned.
func (p *WeeklyPlan) Day(day int) (*DaySession, error) {
	if !ValidDay(day) {
		return nil, fmt.Errorf("%w: dayOfWeek %d is outside 0..6", ErrValidation, day)
	}
	slot := p.Days[day]
	if slot == nil {
		return nil, fmt.Errorf("%w: no session assigned on day %d", ErrNotFound, day)
	}
	return slot, nil
}

// AssignDay places sessionID on an empty day.
func (p *WeeklyPlan) AssignDay(day int, sessionID primitive.ObjectID, notes string) error {
	if !ValidDay(day) {
		return fmt.Errorf("%w: dayOfWeek %d is outside 0..6", ErrValidation, day)
	}
	if sessionID.IsZero() {
		return fmt.Errorf("%w: sessionId is required", ErrValidation)
	}
	if p.AssignedCount() >= DaysPerWeek {
		return fmt.Errorf("%w: plan already has %d assigned days", ErrCapacity, DaysPerWeek)
	}
	if p.Days[day] != nil {
		return fmt.Errorf("%w: day %d already has a session assigned", ErrConflict, day)
	}
	p.Days[day] = &DaySession{
		SessionID:          sessionID,
		Notes:              strings.TrimSpace(notes),
		CompletedExercises: []string{},
	}
	return nil
}

// RemoveDay clears a day. Removing an empty day is a no-op.
func (p *WeeklyPlan) RemoveDay(day int) error {
	if !ValidDay(day) {
		return fmt.Errorf("%w: dayOfWeek %d is outside 0..6", ErrValidation, day)
	}
	p.Days[day] = nil
	return nil
}

// UpdateDayNotes replaces the coach notes of an assigned day.
func (p *WeeklyPlan) UpdateDayNotes(day int, notes string) error {
	slot, err := p.Day(day)
	if err != nil {
		return err
	}
	slot.Notes = strings.TrimSpace(notes)
	return nil
}

// MarkDayCompleted sets the completed flag of a day. Exercise-level
// completion is left untouched.
func (p *WeeklyPlan) MarkDayCompleted(day int, completed bool) error {
	slot, err := p.Day(day)
	if err != nil {
		return err
	}
	slot.Completed = completed
	return nil
}

// MarkExerciseCompleted adds or removes sessionExerciseID from the completed
// set of a day. session must be the Session assigned on that day, and the
// exercise must belong to it. The day's completed flag is left untouched.
func (p *WeeklyPlan) MarkExerciseCompleted(day int, session *Session, sessionExerciseID string, completed bool) error {
	slot, err := p.Day(day)
	if err != nil {
		return err
	}
	if session == nil || session.ID != slot.SessionID {
		return fmt.Errorf("%w: session assigned on day %d is not available", ErrNotFound, day)
	}
	if !session.HasExercise(sessionExerciseID) {
		return fmt.Errorf("%w: exercise %s does not belong to the session on day %d", ErrNotFound, sessionExerciseID, day)
	}

	has := slot.exerciseCompleted(sessionExerciseID)
	switch {
	case completed && !has:
		slot.CompletedExercises = append(slot.CompletedExercises, sessionExerciseID)
	case !completed && has:
		kept := make([]string, 0, len(slot.CompletedExercises)-1)
		for _, id := range slot.CompletedExercises {
			if id != sessionExerciseID {
				kept = append(kept, id)
			}
		}
		slot.CompletedExercises = kept
	}
	return nil
}

// Duplicate copies the plan into the 7-day window right after EndDate. Session
// references are reused, completion state is reset, and the copy targets
// targetClientID when given.
func (p *WeeklyPlan) Duplicate(targetClientID string) *WeeklyPlan {
	clientID := p.ClientID
	if strings.TrimSpace(targetClientID) != "" {
		clientID = strings.TrimSpace(targetClientID)
	}
	start := DateOnly(p.EndDate).AddDate(0, 0, 1)
	dup := &WeeklyPlan{
		ID:             primitive.NewObjectID(),
		OrganizationID: p.OrganizationID,
		CoachID:        p.CoachID,
		ClientID:       clientID,
		Name:           p.Name,
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, DaysPerWeek-1),
		IsActive:       p.IsActive,
		FormTemplateID: p.FormTemplateID,
	}
	for day, slot := range p.Days {
		if slot == nil {
			continue
		}
		dup.Days[day] = &DaySession{
			SessionID:          slot.SessionID,
			Notes:              slot.Notes,
			CompletedExercises: []string{},
		}
	}
	return dup
}

// SessionIDs lists the distinct sessions referenced by the plan.
func (p *WeeklyPlan) SessionIDs() []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	for _, slot := range p.Days {
		if slot != nil && !seen[slot.SessionID] {
			seen[slot.SessionID] = true
			ids = append(ids, slot.SessionID)
		}
	}
	return ids
}

func (p *WeeklyPlan) AssignedCount() int {
	n := 0
	for _, slot := range p.Days {
		if slot != nil {
			n++
		}
	}
	return n
}

func (p *WeeklyPlan) CompletedCount() int {
	n := 0
	for _, slot := range p.Days {
		if slot != nil && slot.Completed {
			n++
		}
	}
	return n
}

// Progress is computed on read from the day flags and never stored.
type Progress struct {
	Completed int     `json:"completed"`
	Assigned  int     `json:"assigned"`
	Ratio     float64 `json:"ratio"`
}

func (p *WeeklyPlan) Progress() Progress {
	pr := Progress{Completed: p.CompletedCount(), Assigned: p.AssignedCount()}
	if pr.Assigned > 0 {
		pr.Ratio = float64(pr.Completed) / float64(pr.Assigned)
	}
	return pr
}

// HasEnded reports whether the plan's last day is on or before the date of now.
func (p *WeeklyPlan) HasEnded(now time.Time) bool {
	return !DateOnly(p.EndDate).After(DateOnly(now))
}

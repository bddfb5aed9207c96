package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionType is the declared discipline of a Session.
type SessionType string

const (
	SessionStrength SessionType = "strength"
	SessionCardio   SessionType = "cardio"
	SessionMixed    SessionType = "mixed"
)

func (t SessionType) Valid() bool {
	switch t {
	case SessionStrength, SessionCardio, SessionMixed:
		return true
	}
	return false
}

// Allows reports whether exercises of configuration family f may live in a
// session of type t.
func (t SessionType) Allows(f Family) bool {
	switch t {
	case SessionStrength:
		return f == FamilyStrength
	case SessionCardio:
		return f == FamilyCardio
	case SessionMixed:
		return f == FamilyStrength || f == FamilyCardio
	}
	return false
}

// SessionExercise is one catalog exercise placed inside a Session, owned
// exclusively by that Session.
type SessionExercise struct {
	ID         string `bson:"id" json:"id"`
	ExerciseID string `bson:"exerciseId" json:"exerciseId"` // exercise catalog reference
	Order      int    `bson:"order" json:"order"`
	Notes      string `bson:"notes,omitempty" json:"notes,omitempty"`
	Config     Config `bson:"config" json:"config"`
}

// Session is a reusable, ordered collection of configured exercises,
// independent of any calendar date.
type Session struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID string             `bson:"organizationId" json:"organizationId"`
	CoachID        string             `bson:"coachId" json:"coachId"`
	Name           string             `bson:"name" json:"name"`
	Type           SessionType        `bson:"type" json:"type"`
	GoalIDs        []string           `bson:"goalIds" json:"goalIds"`
	MuscleFocusIDs []string           `bson:"muscleFocusIds" json:"muscleFocusIds"`
	Exercises      []SessionExercise  `bson:"exercises" json:"exercises"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SessionMeta carries the descriptive fields of a new Session.
type SessionMeta struct {
	OrganizationID string
	CoachID        string
	Name           string
	Type           SessionType
	GoalIDs        []string
	MuscleFocusIDs []string
}

// ExerciseInput describes an exercise to place in a Session.
type ExerciseInput struct {
	ExerciseID string
	Notes      string
	Config     Config
}

func (in ExerciseInput) validate() error {
	if strings.TrimSpace(in.ExerciseID) == "" {
		return fmt.Errorf("%w: exerciseId is required", ErrValidation)
	}
	return in.Config.Validate()
}

// NewSession builds a Session from meta and a non-empty exercise list. Every
// configuration must be compatible with meta.Type.
func NewSession(meta SessionMeta, exercises []ExerciseInput) (*Session, error) {
	if strings.TrimSpace(meta.Name) == "" {
		return nil, fmt.Errorf("%w: session name is required", ErrValidation)
	}
	if !meta.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown session type %q", ErrValidation, meta.Type)
	}
	if len(exercises) == 0 {
		return nil, fmt.Errorf("%w: a session needs at least one exercise", ErrValidation)
	}

	items := make([]SessionExercise, 0, len(exercises))
	for i, in := range exercises {
		if err := in.validate(); err != nil {
			return nil, fmt.Errorf("exercise %d: %w", i, err)
		}
		if !meta.Type.Allows(in.Config.Family()) {
			return nil, fmt.Errorf("%w: exercise %d: %w", ErrValidation, i, mismatch(meta.Type, in.Config))
		}
		items = append(items, SessionExercise{
			ID:         uuid.NewString(),
			ExerciseID: in.ExerciseID,
			Order:      i,
			Notes:      in.Notes,
			Config:     in.Config,
		})
	}

	return &Session{
		ID:             primitive.NewObjectID(),
		OrganizationID: meta.OrganizationID,
		CoachID:        meta.CoachID,
		Name:           strings.TrimSpace(meta.Name),
		Type:           meta.Type,
		GoalIDs:        uniqueStrings(meta.GoalIDs),
		MuscleFocusIDs: uniqueStrings(meta.MuscleFocusIDs),
		Exercises:      items,
	}, nil
}

func mismatch(t SessionType, c Config) error {
	return fmt.Errorf("%w: %s session cannot hold a %s configuration", ErrTypeMismatch, t, c.Type())
}

// AddExercise appends an exercise at the end of the session.
func (s *Session) AddExercise(in ExerciseInput) (SessionExercise, error) {
	if err := in.validate(); err != nil {
		return SessionExercise{}, err
	}
	if !s.Type.Allows(in.Config.Family()) {
		return SessionExercise{}, mismatch(s.Type, in.Config)
	}
	item := SessionExercise{
		ID:         uuid.NewString(),
		ExerciseID: in.ExerciseID,
		Order:      len(s.Exercises),
		Notes:      in.Notes,
		Config:     in.Config,
	}
	s.Exercises = append(s.Exercises, item)
	return item, nil
}

// RemoveExercise deletes one exercise and re-densifies the order. The last
// exercise of a session cannot be removed.
func (s *Session) RemoveExercise(sessionExerciseID string) error {
	idx := s.indexOf(sessionExerciseID)
	if idx < 0 {
		return fmt.Errorf("%w: exercise %s is not part of session %s", ErrNotFound, sessionExerciseID, s.ID.Hex())
	}
	if len(s.Exercises) == 1 {
		return fmt.Errorf("%w: a session needs at least one exercise", ErrValidation)
	}
	remaining := make([]SessionExercise, 0, len(s.Exercises)-1)
	remaining = append(remaining, s.Exercises[:idx]...)
	remaining = append(remaining, s.Exercises[idx+1:]...)
	s.Exercises = renumber(remaining)
	return nil
}

// ReorderExercises rearranges the exercises to follow ids, which must be a
// permutation of the current exercise identifiers.
func (s *Session) ReorderExercises(ids []string) error {
	if len(ids) != len(s.Exercises) {
		return fmt.Errorf("%w: expected %d exercise ids, got %d", ErrValidation, len(s.Exercises), len(ids))
	}
	seen := make(map[string]bool, len(ids))
	reordered := make([]SessionExercise, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("%w: exercise %s listed twice", ErrValidation, id)
		}
		seen[id] = true
		idx := s.indexOf(id)
		if idx < 0 {
			return fmt.Errorf("%w: exercise %s is not part of the session", ErrValidation, id)
		}
		reordered = append(reordered, s.Exercises[idx])
	}
	s.Exercises = renumber(reordered)
	return nil
}

// ChangeType switches the session discipline. It fails without touching the
// session when any existing exercise would become incompatible.
func (s *Session) ChangeType(t SessionType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: unknown session type %q", ErrValidation, t)
	}
	for _, ex := range s.Exercises {
		if !t.Allows(ex.Config.Family()) {
			return fmt.Errorf("%w: exercise %s has a %s configuration not allowed in a %s session",
				ErrIncompatibleState, ex.ID, ex.Config.Type(), t)
		}
	}
	s.Type = t
	return nil
}

// ReplaceExerciseConfig swaps the whole configuration of one exercise. This is
// the only way an exercise changes configuration type.
func (s *Session) ReplaceExerciseConfig(sessionExerciseID string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	idx := s.indexOf(sessionExerciseID)
	if idx < 0 {
		return fmt.Errorf("%w: exercise %s is not part of session %s", ErrNotFound, sessionExerciseID, s.ID.Hex())
	}
	if !s.Type.Allows(cfg.Family()) {
		return mismatch(s.Type, cfg)
	}
	s.Exercises[idx].Config = cfg
	return nil
}

// UpdateMeta replaces the descriptive fields of the session.
func (s *Session) UpdateMeta(name string, goalIDs, muscleFocusIDs []string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: session name is required", ErrValidation)
	}
	s.Name = strings.TrimSpace(name)
	s.GoalIDs = uniqueStrings(goalIDs)
	s.MuscleFocusIDs = uniqueStrings(muscleFocusIDs)
	return nil
}

// Duplicate deep-copies the session under fresh identities. An empty name
// keeps the source name.
func (s *Session) Duplicate(name string) *Session {
	if strings.TrimSpace(name) == "" {
		name = s.Name
	}
	exercises := make([]SessionExercise, len(s.Exercises))
	for i, ex := range s.Exercises {
		exercises[i] = SessionExercise{
			ID:         uuid.NewString(),
			ExerciseID: ex.ExerciseID,
			Order:      i,
			Notes:      ex.Notes,
			Config:     ex.Config.clone(),
		}
	}
	return &Session{
		ID:             primitive.NewObjectID(),
		OrganizationID: s.OrganizationID,
		CoachID:        s.CoachID,
		Name:           strings.TrimSpace(name),
		Type:           s.Type,
		GoalIDs:        append([]string(nil), s.GoalIDs...),
		MuscleFocusIDs: append([]string(nil), s.MuscleFocusIDs...),
		Exercises:      exercises,
	}
}

// Validate checks every Session invariant. Repositories call it before
// persisting so an invalid session is never saved.
func (s *Session) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: session name is required", ErrValidation)
	}
	if !s.Type.Valid() {
		return fmt.Errorf("%w: unknown session type %q", ErrValidation, s.Type)
	}
	if len(s.Exercises) == 0 {
		return fmt.Errorf("%w: a session needs at least one exercise", ErrValidation)
	}
	ids := make(map[string]bool, len(s.Exercises))
	for i, ex := range s.Exercises {
		if ex.Order != i {
			return fmt.Errorf("%w: exercise %s has order %d, expected %d", ErrValidation, ex.ID, ex.Order, i)
		}
		if ex.ID == "" || ids[ex.ID] {
			return fmt.Errorf("%w: exercise identifiers must be unique and non-empty", ErrValidation)
		}
		ids[ex.ID] = true
		if err := ex.Config.Validate(); err != nil {
			return fmt.Errorf("exercise %s: %w", ex.ID, err)
		}
		if !s.Type.Allows(ex.Config.Family()) {
			return mismatch(s.Type, ex.Config)
		}
	}
	return nil
}

// HasExercise reports whether sessionExerciseID belongs to this session.
func (s *Session) HasExercise(sessionExerciseID string) bool {
	return s.indexOf(sessionExerciseID) >= 0
}

// ExerciseIDs returns the distinct catalog exercise references used by the session.
func (s *Session) ExerciseIDs() []string {
	ids := make([]string, 0, len(s.Exercises))
	for _, ex := range s.Exercises {
		ids = append(ids, ex.ExerciseID)
	}
	return uniqueStrings(ids)
}

func (s *Session) indexOf(sessionExerciseID string) int {
	for i, ex := range s.Exercises {
		if ex.ID == sessionExerciseID {
			return i
		}
	}
	return -1
}

func renumber(exercises []SessionExercise) []SessionExercise {
	for i := range exercises {
		exercises[i].Order = i
	}
	return exercises
}

func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

package service

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"
	"alcyxob/coaching-app/internal/storage"
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SessionExerciseDetail is a session exercise enriched for display.
type SessionExerciseDetail struct {
	domain.SessionExercise
	Exercise *domain.Exercise
	MediaURL string
}

type SessionDetail struct {
	Session   *domain.Session
	Exercises []SessionExerciseDetail
}

type SessionService interface {
	CreateSession(ctx context.Context, caller domain.Caller, meta domain.SessionMeta, exercises []domain.ExerciseInput) (*domain.Session, error)
	GetSession(ctx context.Context, caller domain.Caller, id primitive.ObjectID) (*domain.Session, error)
	GetSessionDetail(ctx context.Context, caller domain.Caller, id primitive.ObjectID) (*SessionDetail, error)
	ListSessions(ctx context.Context, caller domain.Caller) ([]domain.Session, error)
	UpdateSessionMeta(ctx context.Context, caller domain.Caller, id primitive.ObjectID, name string, goalIDs, muscleFocusIDs []string) (*domain.Session, error)
	AddExercise(ctx context.Context, caller domain.Caller, id primitive.ObjectID, in domain.ExerciseInput) (*domain.Session, error)
	RemoveExercise(ctx context.Context, caller domain.Caller, id primitive.ObjectID, sessionExerciseID string) (*domain.Session, error)
	ReorderExercises(ctx context.Context, caller domain.Caller, id primitive.ObjectID, orderedIDs []string) (*domain.Session, error)
	ReplaceExerciseConfig(ctx context.Context, caller domain.Caller, id primitive.ObjectID, sessionExerciseID string, cfg domain.Config) (*domain.Session, error)
	ChangeSessionType(ctx context.Context, caller domain.Caller, id primitive.ObjectID, t domain.SessionType) (*domain.Session, error)
	DuplicateSession(ctx context.Context, caller domain.Caller, id primitive.ObjectID, name string) (*domain.Session, error)
	DeleteSession(ctx context.Context, caller domain.Caller, id primitive.ObjectID) error
}

// sessionService implements the SessionService interface.
type sessionService struct {
	Infra
	sessions    repository.SessionRepository
	weeklyPlans repository.WeeklyPlanRepository
	catalog     repository.ExerciseCatalog
	media       storage.MediaStorage // optional
}

func NewSessionService(
	infra Infra,
	sessions repository.SessionRepository,
	weeklyPlans repository.WeeklyPlanRepository,
	catalog repository.ExerciseCatalog,
	media storage.MediaStorage,
) SessionService {
	return &sessionService{
		Infra:       infra,
		sessions:    sessions,
		weeklyPlans: weeklyPlans,
		catalog:     catalog,
		media:       media,
	}
}

// checkCatalog fails with NotFound when any exercise reference does not resolve.
func (s *sessionService) checkCatalog(ctx context.Context, orgID string, exerciseIDs []string) error {
	if len(exerciseIDs) == 0 {
		return nil
	}
	found, err := s.catalog.GetByIDs(ctx, orgID, exerciseIDs)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(found))
	for _, ex := range found {
		known[ex.ID.Hex()] = true
	}
	for _, id := range exerciseIDs {
		if !known[id] {
			return fmt.Errorf("%w: exercise %s", domain.ErrNotFound, id)
		}
	}
	return nil
}

func (s *sessionService) CreateSession(ctx context.Context, caller domain.Caller, meta domain.SessionMeta, exercises []domain.ExerciseInput) (_ *domain.Session, err error) {
	defer func() { s.finish("create_session", err, zap.String("orgId", caller.OrganizationID)) }()

	if err = requireCoach(caller); err != nil {
		return nil, err
	}
	meta.OrganizationID = caller.OrganizationID
	meta.CoachID = caller.UserID

	session, err := domain.NewSession(meta, exercises)
	if err != nil {
		return nil, err
	}
	if err = s.checkCatalog(ctx, caller.OrganizationID, session.ExerciseIDs()); err != nil {
		return nil, err
	}
	if err = s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) GetSession(ctx context.Context, caller domain.Caller, id primitive.ObjectID) (*domain.Session, error) {
	session, err := s.sessions.GetByID(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, notFound(err, "session", id.Hex())
	}
	return session, nil
}

// GetSessionDetail resolves catalog entries and media links of every exercise.
// Entries that left the catalog are returned without catalog data.
func (s *sessionService) GetSessionDetail(ctx context.Context, caller domain.Caller, id primitive.ObjectID) (*SessionDetail, error) {
	session, err := s.GetSession(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	found, err := s.catalog.GetByIDs(ctx, caller.OrganizationID, session.ExerciseIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Exercise, len(found))
	for i := range found {
		byID[found[i].ID.Hex()] = &found[i]
	}

	detail := &SessionDetail{Session: session, Exercises: make([]SessionExerciseDetail, 0, len(session.Exercises))}
	for _, ex := range session.Exercises {
		d := SessionExerciseDetail{SessionExercise: ex, Exercise: byID[ex.ExerciseID]}
		if d.Exercise != nil && d.Exercise.MediaKey != "" && s.media != nil {
			url, err := s.media.PresignedDownloadURL(ctx, d.Exercise.MediaKey)
			if err != nil {
				s.Logger.Warn("cannot presign exercise media", zap.String("exerciseId", ex.ExerciseID), zap.Error(err))
			} else {
				d.MediaURL = url
			}
		}
		detail.Exercises = append(detail.Exercises, d)
	}
	return detail, nil
}

func (s *sessionService) ListSessions(ctx context.Context, caller domain.Caller) ([]domain.Session, error) {
	if err := requireCoach(caller); err != nil {
		return nil, err
	}
	return s.sessions.ListByOrganization(ctx, caller.OrganizationID)
}

// mutate loads a session, applies fn and saves the whole document. Nothing is
// saved when fn fails.
func (s *sessionService) mutate(ctx context.Context, op string, caller domain.Caller, id primitive.ObjectID, fn func(*domain.Session) error) (_ *domain.Session, err error) {
	defer func() { s.finish(op, err, zap.String("sessionId", id.Hex())) }()

	if err = requireCoach(caller); err != nil {
		return nil, err
	}
	session, err := s.sessions.GetByID(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, notFound(err, "session", id.Hex())
	}
	if err = fn(session); err != nil {
		return nil, err
	}
	if err = s.sessions.Replace(ctx, session); err != nil {
		return nil, notFound(err, "session", id.Hex())
	}
	return session, nil
}

func (s *sessionService) UpdateSessionMeta(ctx context.Context, caller domain.Caller, id primitive.ObjectID, name string, goalIDs, muscleFocusIDs []string) (*domain.Session, error) {
	return s.mutate(ctx, "update_session_meta", caller, id, func(session *domain.Session) error {
		return session.UpdateMeta(name, goalIDs, muscleFocusIDs)
	})
}

func (s *sessionService) AddExercise(ctx context.Context, caller domain.Caller, id primitive.ObjectID, in domain.ExerciseInput) (*domain.Session, error) {
	return s.mutate(ctx, "add_exercise", caller, id, func(session *domain.Session) error {
		if _, err := session.AddExercise(in); err != nil {
			return err
		}
		return s.checkCatalog(ctx, caller.OrganizationID, []string{in.ExerciseID})
	})
}

func (s *sessionService) RemoveExercise(ctx context.Context, caller domain.Caller, id primitive.ObjectID, sessionExerciseID string) (*domain.Session, error) {
	return s.mutate(ctx, "remove_exercise", caller, id, func(session *domain.Session) error {
		return session.RemoveExercise(sessionExerciseID)
	})
}

func (s *sessionService) ReorderExercises(ctx context.Context, caller domain.Caller, id primitive.ObjectID, orderedIDs []string) (*domain.Session, error) {
	return s.mutate(ctx, "reorder_exercises", caller, id, func(session *domain.Session) error {
		return session.ReorderExercises(orderedIDs)
	})
}

func (s *sessionService) ReplaceExerciseConfig(ctx context.Context, caller domain.Caller, id primitive.ObjectID, sessionExerciseID string, cfg domain.Config) (*domain.Session, error) {
	return s.mutate(ctx, "replace_exercise_config", caller, id, func(session *domain.Session) error {
		return session.ReplaceExerciseConfig(sessionExerciseID, cfg)
	})
}

func (s *sessionService) ChangeSessionType(ctx context.Context, caller domain.Caller, id primitive.ObjectID, t domain.SessionType) (*domain.Session, error) {
	return s.mutate(ctx, "change_session_type", caller, id, func(session *domain.Session) error {
		return session.ChangeType(t)
	})
}

func (s *sessionService) DuplicateSession(ctx context.Context, caller domain.Caller, id primitive.ObjectID, name string) (_ *domain.Session, err error) {
	defer func() { s.finish("duplicate_session", err, zap.String("sessionId", id.Hex())) }()

	if err = requireCoach(caller); err != nil {
		return nil, err
	}
	source, err := s.sessions.GetByID(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, notFound(err, "session", id.Hex())
	}
	dup := source.Duplicate(name)
	dup.CoachID = caller.UserID
	if err = s.sessions.Create(ctx, dup); err != nil {
		return nil, err
	}
	return dup, nil
}

// DeleteSession refuses to delete a session still scheduled in a weekly plan.
func (s *sessionService) DeleteSession(ctx context.Context, caller domain.Caller, id primitive.ObjectID) (err error) {
	defer func() { s.finish("delete_session", err, zap.String("sessionId", id.Hex())) }()

	if err = requireCoach(caller); err != nil {
		return err
	}
	inUse, err := s.weeklyPlans.ExistsWithSession(ctx, caller.OrganizationID, id)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("%w: session %s is scheduled in a weekly plan", domain.ErrConflict, id.Hex())
	}
	return notFound(s.sessions.Delete(ctx, caller.OrganizationID, id), "session", id.Hex())
}

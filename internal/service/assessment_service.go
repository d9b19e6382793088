package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mbti-bot/internal/domain"
	"mbti-bot/internal/repository"
)

var (
	ErrNotSessionOwner = errors.New("assessment belongs to another user")
	ErrInvalidChoice   = errors.New("choice index out of range")
	ErrSessionComplete = errors.New("assessment already complete")
	ErrStaleStep       = errors.New("answer does not match the current step")
	ErrInvalidUser     = errors.New("user id is required")
)

// answerIncrements es el puntaje por opcion A..D en la fase principal.
var answerIncrements = [4]float64{0.3, 0.6, 0.9, 1.2}

// AssessmentService advances assessments one answer at a time. Session state
// lives in the continuation token, so the service itself holds nothing
// between steps; the store is only touched when a session reaches the end of
// the catalog.
type AssessmentService struct {
	catalog *domain.Catalog
	store   repository.AssessmentStore
	tokens  *SessionTokenCodec
	guard   StepGuard
	logger  *zap.Logger
}

func NewAssessmentService(
	catalog *domain.Catalog,
	store repository.AssessmentStore,
	tokens *SessionTokenCodec,
	guard StepGuard,
	logger *zap.Logger,
) *AssessmentService {
	return &AssessmentService{
		catalog: catalog,
		store:   store,
		tokens:  tokens,
		guard:   guard,
		logger:  logger,
	}
}

// AnswerOutcome es el resultado de un paso: o el siguiente prompt, o el
// resultado final ya persistido junto con su snapshot de historial.
type AnswerOutcome struct {
	Prompt   *domain.Prompt
	Result   *domain.Result
	Entry    *domain.HistoryEntry
	Previous *domain.Result
	// Contact viaja en el token y se usa para la entrega privada del reporte.
	Contact string
}

// Start crea una sesion nueva en el indice 0 y devuelve el primer prompt.
func (s *AssessmentService) Start(userID, username, contact string) (domain.Prompt, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Prompt{}, ErrInvalidUser
	}
	session := domain.Session{
		ID:          uuid.NewString(),
		OwnerID:     userID,
		Username:    strings.TrimSpace(username),
		Contact:     strings.TrimSpace(contact),
		Index:       0,
		TraitScores: domain.NewTraitScores(),
	}
	if s.guard != nil {
		if err := s.guard.Begin(userID); err != nil && s.logger != nil {
			s.logger.Warn("step guard begin failed", zap.Error(err), zap.String("user_id", userID))
		}
	}
	if s.logger != nil {
		s.logger.Info("assessment started",
			zap.String("user_id", userID),
			zap.String("session_id", session.ID),
		)
	}
	return s.promptFor(session)
}

// Answer applies one choice to the session carried by `token`. Validation and
// ownership failures leave every state untouched; only the terminal step
// writes to the store, and that write is atomic.
func (s *AssessmentService) Answer(ctx context.Context, token, requesterID string, choice int) (AnswerOutcome, error) {
	session, err := s.tokens.Parse(token)
	if err != nil {
		return AnswerOutcome{}, err
	}
	if strings.TrimSpace(requesterID) != session.OwnerID {
		return AnswerOutcome{}, ErrNotSessionOwner
	}
	if session.Index >= s.catalog.Len() {
		return AnswerOutcome{}, ErrSessionComplete
	}
	if choice < 0 || choice > 3 {
		return AnswerOutcome{}, ErrInvalidChoice
	}
	if s.guard != nil {
		ok, err := s.guard.Advance(session.OwnerID, session.Index)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("step guard unavailable", zap.Error(err), zap.String("user_id", session.OwnerID))
			}
		} else if !ok {
			return AnswerOutcome{}, ErrStaleStep
		}
	}

	question := s.catalog.Question(session.Index)
	switch question.Phase {
	case domain.PhaseMain:
		session.TraitScores[question.Traits[choice]] += answerIncrements[choice]
	case domain.PhaseSubtype:
		session.SubtypeScores = append(session.SubtypeScores, question.Values[choice])
	}
	session.Index++

	if session.Index < s.catalog.Len() {
		prompt, err := s.promptFor(session)
		if err != nil {
			return AnswerOutcome{}, err
		}
		return AnswerOutcome{Prompt: &prompt}, nil
	}

	outcome, err := s.finalize(ctx, session)
	if err != nil && s.guard != nil {
		// El cierre no se persistio: el guard vuelve al paso para que el
		// reintento del mismo token sea aceptado.
		if rerr := s.guard.Rewind(session.OwnerID, session.Index-1); rerr != nil && s.logger != nil {
			s.logger.Warn("step guard rewind failed", zap.Error(rerr), zap.String("user_id", session.OwnerID))
		}
	}
	return outcome, err
}

func (s *AssessmentService) finalize(ctx context.Context, session domain.Session) (AnswerOutcome, error) {
	var subtypeTotal float64
	for _, v := range session.SubtypeScores {
		subtypeTotal += v
	}
	code := TypeCode(session.TraitScores)
	subtype := SubtypeLabel(
		session.TraitScores.Total(),
		subtypeTotal,
		s.catalog.MainCount(),
		s.catalog.SubtypeCount(),
	)
	now := time.Now().UTC()
	result := domain.Result{
		UserID:    session.OwnerID,
		Username:  session.Username,
		TypeCode:  code,
		Subtype:   subtype,
		Timestamp: now,
	}
	entry := domain.HistoryEntry{
		UserID:        session.OwnerID,
		Username:      session.Username,
		TypeCode:      code,
		Subtype:       subtype,
		TraitScores:   session.TraitScores.Clone(),
		SubtypeScores: append([]float64(nil), session.SubtypeScores...),
		Timestamp:     now,
	}
	previous, err := s.store.Finalize(ctx, result, entry)
	if err != nil {
		return AnswerOutcome{}, fmt.Errorf("finalize assessment for user %s: %w", session.OwnerID, err)
	}
	if s.logger != nil {
		s.logger.Info("assessment completed",
			zap.String("user_id", session.OwnerID),
			zap.String("session_id", session.ID),
			zap.String("type", result.FullCode()),
		)
	}
	return AnswerOutcome{Result: &result, Entry: &entry, Previous: previous, Contact: session.Contact}, nil
}

// promptFor arma el prompt de la pregunta actual y firma el token de
// continuacion con el estado ya avanzado.
func (s *AssessmentService) promptFor(session domain.Session) (domain.Prompt, error) {
	token, err := s.tokens.Issue(session)
	if err != nil {
		return domain.Prompt{}, err
	}
	question := s.catalog.Question(session.Index)
	prompt := domain.Prompt{
		Token:    token,
		Number:   session.Index + 1,
		Total:    s.catalog.Len(),
		Text:     question.Text,
		Choices:  domain.ChoiceLabels,
		OwnerID:  session.OwnerID,
		Username: session.Username,
	}
	switch session.Index {
	case 0:
		prompt.Intro = "Each question offers four choices, from \"Strongly disagree\" to \"Strongly agree\". Pick the one closest to how you usually are."
	case s.catalog.MainCount():
		prompt.Intro = "Next come four questions about your subtype (Assertive / Turbulent)."
	}
	return prompt, nil
}

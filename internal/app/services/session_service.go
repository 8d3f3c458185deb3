package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/campusconnect/campusconnect/internal/app/derive"
	"github.com/campusconnect/campusconnect/internal/app/models"
	"github.com/campusconnect/campusconnect/internal/app/models/dto"
	"github.com/campusconnect/campusconnect/internal/app/repositories"
	"github.com/campusconnect/campusconnect/internal/pkg/apperrors"
	"github.com/campusconnect/campusconnect/internal/pkg/docstore"
	"github.com/campusconnect/campusconnect/internal/pkg/events"
	"github.com/campusconnect/campusconnect/internal/pkg/timestamp"
	"github.com/campusconnect/campusconnect/internal/pkg/videoroom"
)

// SessionService defines the session commands
type SessionService interface {
	CreateSession(ctx context.Context, uid string, req *dto.CreateSessionRequest) (string, error)
	JoinSession(ctx context.Context, uid, sessionID string) (*models.Session, error)
	LeaveSession(ctx context.Context, uid, sessionID string) error
	EndSession(ctx context.Context, uid, sessionID string) error
	VideoRoom(ctx context.Context, uid, sessionID string) (*dto.VideoRoomResponse, error)
}

// sessionServiceImpl implements SessionService
type sessionServiceImpl struct {
	repos     *repositories.Repositories
	publisher events.Publisher
	rooms     *videoroom.Builder
	logger    zerolog.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(repos *repositories.Repositories, publisher events.Publisher, rooms *videoroom.Builder, logger zerolog.Logger) SessionService {
	return &sessionServiceImpl{
		repos:     repos,
		publisher: publisher,
		rooms:     rooms,
		logger:    logger,
	}
}

// CreateSession writes the session and one NEW_SESSION notification per
// audience member in a single batch. The creator is the first participant.
func (s *sessionServiceImpl) CreateSession(ctx context.Context, uid string, req *dto.CreateSessionRequest) (string, error) {
	id := docstore.NewID()
	err := observe("create_session", uid, func() error {
		creator, err := s.repos.Users.GetByID(ctx, uid)
		if err != nil {
			return err
		}

		session := &models.Session{
			ID:             id,
			Topic:          strings.TrimSpace(req.Topic),
			Description:    strings.TrimSpace(req.Description),
			Creator:        creator.Name,
			CreatorID:      uid,
			ParticipantIDs: []string{uid},
			SessionType:    models.SessionType(req.SessionType),
			ScheduledAt:    timestamp.FromTime(req.ScheduledAt),
			TargetColleges: req.TargetColleges,
			TargetYears:    req.TargetYears,
			Status:         models.SessionStatusScheduled,
		}
		fields := map[string]any{
			"topic":          session.Topic,
			"description":    session.Description,
			"creator":        session.Creator,
			"creatorId":      uid,
			"participantIds": session.ParticipantIDs,
			"createdAt":      docstore.ServerTimestamp(),
			"sessionType":    string(session.SessionType),
			"scheduledAt":    req.ScheduledAt,
			"targetColleges": session.TargetColleges,
			"targetYears":    session.TargetYears,
			"status":         string(models.SessionStatusScheduled),
		}
		if session.SessionType == models.SessionTypeSkillExchange {
			fields["skillsToOffer"] = nonEmpty(req.SkillsToOffer)
			fields["skillsSought"] = nonEmpty(req.SkillsSought)
		}

		users, err := s.repos.Users.List(ctx)
		if err != nil {
			return err
		}
		audience := derive.SessionAudience(users, session)

		batch := s.repos.Store.Batch().Set(repositories.SessionPath(id), fields, false)
		for _, recipient := range audience {
			n := models.NewSessionNotification(recipient, session)
			n["createdAt"] = docstore.ServerTimestamp()
			batch.Set(repositories.NotificationPath(docstore.NewID()), n, false)
		}
		if err := batch.Commit(ctx); err != nil {
			s.logger.Error().Err(err).Str("uid", uid).Msg("Failed to create session")
			return fmt.Errorf("error creating session: %w", err)
		}

		s.logger.Info().
			Str("uid", uid).
			Str("sessionID", id).
			Int("notified", len(audience)).
			Msg("Session created")
		e := events.New(events.SessionCreated, uid, id)
		e.Recipients = len(audience)
		emit(ctx, s.publisher, s.logger, e)
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// JoinSession adds the caller to the participants. Ended sessions reject joins.
func (s *sessionServiceImpl) JoinSession(ctx context.Context, uid, sessionID string) (*models.Session, error) {
	var joined *models.Session
	err := observe("join_session", uid, func() error {
		session, err := s.repos.Sessions.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if !derive.CanJoin(session) {
			return apperrors.ErrSessionCompleted
		}

		if err := s.repos.Store.Update(ctx, repositories.SessionPath(sessionID), map[string]any{
			"participantIds": docstore.ArrayUnion(uid),
		}); err != nil {
			return fmt.Errorf("error joining session: %w", err)
		}

		if !session.HasParticipant(uid) {
			session.ParticipantIDs = append(session.ParticipantIDs, uid)
		}
		joined = session
		emit(ctx, s.publisher, s.logger, events.New(events.SessionJoined, uid, sessionID))
		return nil
	})
	return joined, err
}

// LeaveSession removes the caller from the participants.
func (s *sessionServiceImpl) LeaveSession(ctx context.Context, uid, sessionID string) error {
	return observe("leave_session", uid, func() error {
		if err := s.repos.Store.Update(ctx, repositories.SessionPath(sessionID), map[string]any{
			"participantIds": docstore.ArrayRemove(uid),
		}); err != nil {
			if apperrors.Is(err, docstore.ErrNotFound) {
				return apperrors.ErrSessionNotFound
			}
			return fmt.Errorf("error leaving session: %w", err)
		}
		emit(ctx, s.publisher, s.logger, events.New(events.SessionLeft, uid, sessionID))
		return nil
	})
}

// EndSession completes a session. Only the host may end it, once.
func (s *sessionServiceImpl) EndSession(ctx context.Context, uid, sessionID string) error {
	return observe("end_session", uid, func() error {
		session, err := s.repos.Sessions.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.CreatorID != uid {
			return apperrors.ErrNotSessionHost
		}
		if session.IsCompleted() {
			return apperrors.ErrSessionCompleted
		}

		if err := s.repos.Store.Update(ctx, repositories.SessionPath(sessionID), map[string]any{
			"status":      string(models.SessionStatusCompleted),
			"completedAt": docstore.ServerTimestamp(),
		}); err != nil {
			return fmt.Errorf("error ending session: %w", err)
		}

		s.logger.Info().Str("uid", uid).Str("sessionID", sessionID).Msg("Session ended")
		emit(ctx, s.publisher, s.logger, events.New(events.SessionEnded, uid, sessionID))
		return nil
	})
}

// VideoRoom returns the conference URL of a session for the caller.
func (s *sessionServiceImpl) VideoRoom(ctx context.Context, uid, sessionID string) (*dto.VideoRoomResponse, error) {
	var resp *dto.VideoRoomResponse
	err := observe("video_room", uid, func() error {
		session, err := s.repos.Sessions.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		me, err := s.repos.Users.GetByID(ctx, uid)
		if err != nil {
			return err
		}
		resp = &dto.VideoRoomResponse{
			URL:    s.rooms.URL(sessionID, me.Name, session.CreatorID == uid),
			RoomID: s.rooms.RoomID(sessionID),
		}
		return nil
	})
	return resp, err
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

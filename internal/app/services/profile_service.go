package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/campusconnect/campusconnect/internal/app/models/dto"
	"github.com/campusconnect/campusconnect/internal/app/repositories"
	"github.com/campusconnect/campusconnect/internal/pkg/apperrors"
	"github.com/campusconnect/campusconnect/internal/pkg/docstore"
	"github.com/campusconnect/campusconnect/internal/pkg/events"
	"github.com/campusconnect/campusconnect/internal/pkg/suggest"
)

// ProfileService defines the profile commands
type ProfileService interface {
	SaveProfile(ctx context.Context, uid, email string, req *dto.SaveProfileRequest) error
	SuggestSkills(ctx context.Context, uid string, req *dto.SuggestSkillsRequest) (*dto.SuggestSkillsResponse, error)
	ToggleBlock(ctx context.Context, uid, target string) (bool, error)
	AddTestimonial(ctx context.Context, uid string, req *dto.TestimonialRequest) (string, error)
	StampNotificationsChecked(ctx context.Context, uid string) error
}

// profileServiceImpl implements ProfileService
type profileServiceImpl struct {
	repos     *repositories.Repositories
	publisher events.Publisher
	suggester suggest.Suggester
	logger    zerolog.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(repos *repositories.Repositories, publisher events.Publisher, suggester suggest.Suggester, logger zerolog.Logger) ProfileService {
	return &profileServiceImpl{
		repos:     repos,
		publisher: publisher,
		suggester: suggester,
		logger:    logger,
	}
}

// SaveProfile creates the caller's profile or merges the edited fields into it.
// A new profile starts with its notification watermark at the write time.
func (s *profileServiceImpl) SaveProfile(ctx context.Context, uid, email string, req *dto.SaveProfileRequest) error {
	return observe("save_profile", uid, func() error {
		_, err := s.repos.Users.GetByID(ctx, uid)
		isNew := errors.Is(err, apperrors.ErrUserNotFound)
		if err != nil && !isNew {
			return err
		}

		fields := map[string]any{
			"name":      strings.TrimSpace(req.Name),
			"email":     email,
			"mobile":    strings.TrimSpace(req.Mobile),
			"college":   req.College,
			"year":      req.Year,
			"interests": req.Interests,
			"skills":    suggest.MergeSkills(req.Skills, nil),
		}
		if req.ProfilePictureURL != "" {
			fields["profilePictureUrl"] = req.ProfilePictureURL
		}
		if isNew {
			fields["lastCheckedNotifications"] = docstore.ServerTimestamp()
		}

		if err := s.repos.Store.Set(ctx, repositories.UserPath(uid), fields, true); err != nil {
			s.logger.Error().Err(err).Str("uid", uid).Msg("Failed to save profile")
			return fmt.Errorf("error saving profile: %w", err)
		}

		s.logger.Info().Str("uid", uid).Bool("created", isNew).Msg("Profile saved")
		emit(ctx, s.publisher, s.logger, events.New(events.ProfileSaved, uid, uid))
		return nil
	})
}

// SuggestSkills asks the suggestion service and merges the answer into the
// skills the caller already has. A failed suggestion leaves the skills unchanged.
func (s *profileServiceImpl) SuggestSkills(ctx context.Context, uid string, req *dto.SuggestSkillsRequest) (*dto.SuggestSkillsResponse, error) {
	var resp *dto.SuggestSkillsResponse
	err := observe("suggest_skills", uid, func() error {
		if s.suggester == nil {
			return apperrors.ErrSuggestionUnavailable
		}
		suggested := s.suggester.SuggestSkills(ctx, req.Interests)
		resp = &dto.SuggestSkillsResponse{
			Suggested: suggested,
			Skills:    suggest.MergeSkills(req.Skills, suggested),
		}
		return nil
	})
	return resp, err
}

// ToggleBlock blocks target, or unblocks it when already blocked. It returns
// whether target is blocked afterwards.
func (s *profileServiceImpl) ToggleBlock(ctx context.Context, uid, target string) (bool, error) {
	var blocked bool
	err := observe("toggle_block", uid, func() error {
		if target == "" || target == uid {
			return apperrors.NewBadRequestError("You cannot block yourself")
		}
		me, err := s.repos.Users.GetByID(ctx, uid)
		if err != nil {
			return err
		}

		blocked = !me.HasBlocked(target)
		op := docstore.ArrayUnion(target)
		if !blocked {
			op = docstore.ArrayRemove(target)
		}
		if err := s.repos.Store.Update(ctx, repositories.UserPath(uid), map[string]any{"blockedUsers": op}); err != nil {
			return fmt.Errorf("error updating blocked users: %w", err)
		}

		s.logger.Info().Str("uid", uid).Str("target", target).Bool("blocked", blocked).Msg("Block toggled")
		emit(ctx, s.publisher, s.logger, events.New(events.UserBlockToggled, uid, target))
		return nil
	})
	return blocked, err
}

// AddTestimonial stores a quote signed with the caller's name and college.
func (s *profileServiceImpl) AddTestimonial(ctx context.Context, uid string, req *dto.TestimonialRequest) (string, error) {
	var id string
	err := observe("add_testimonial", uid, func() error {
		quote := strings.TrimSpace(req.Quote)
		if quote == "" {
			return apperrors.NewBadRequestError("Testimonial cannot be empty")
		}
		me, err := s.repos.Users.GetByID(ctx, uid)
		if err != nil {
			return err
		}

		id, err = s.repos.Store.Add(ctx, repositories.TestimonialsCollection(), map[string]any{
			"userId":      uid,
			"userName":    me.Name,
			"userCollege": me.College,
			"quote":       quote,
			"createdAt":   docstore.ServerTimestamp(),
		})
		if err != nil {
			return fmt.Errorf("error adding testimonial: %w", err)
		}

		emit(ctx, s.publisher, s.logger, events.New(events.TestimonialAdded, uid, id))
		return nil
	})
	return id, err
}

// StampNotificationsChecked sets the caller's notification watermark to the write time.
func (s *profileServiceImpl) StampNotificationsChecked(ctx context.Context, uid string) error {
	return observe("stamp_notifications", uid, func() error {
		return s.repos.Store.Update(ctx, repositories.UserPath(uid), map[string]any{
			"lastCheckedNotifications": docstore.ServerTimestamp(),
		})
	})
}

package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusconnect/campusconnect/internal/app/models/dto"
	"github.com/campusconnect/campusconnect/internal/pkg/apperrors"
	"github.com/campusconnect/campusconnect/internal/pkg/logger"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// Checked in order: the first match wins.
var errorMappings = []errorMapping{
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrOwnerProtected, http.StatusForbidden, dto.ErrorCodeForbidden, "The community owner cannot be changed"},
	{apperrors.ErrNotSessionHost, http.StatusForbidden, dto.ErrorCodeForbidden, "Only the host can end this session"},
	{apperrors.ErrChatBlocked, http.StatusForbidden, dto.ErrorCodeForbidden, "You can't message this user"},
	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found"},
	{apperrors.ErrSessionNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Session not found"},
	{apperrors.ErrCommunityNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Community not found"},
	{apperrors.ErrPostNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Post not found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrSessionCompleted, http.StatusConflict, dto.ErrorCodeConflict, "This session has already ended"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrTooManyImages, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Too many images attached"},
	{apperrors.ErrSelfChat, http.StatusBadRequest, dto.ErrorCodeInvalidRequest, "Cannot open a chat with yourself"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeInvalidRequest, "Bad request"},
	{apperrors.ErrSuggestionUnavailable, http.StatusServiceUnavailable, dto.ErrorCodeExternalServiceError, "Skill suggestions are not available"},
}

// HandleAPIError handles common API errors and returns appropriate responses.
// A CustomError's message replaces the default message of its mapping.
func HandleAPIError(c *gin.Context, err error) {
	var custom *apperrors.CustomError
	hasCustom := errors.As(err, &custom) && custom.Message != ""

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		message := m.message
		if hasCustom {
			message = custom.Message
		}
		c.JSON(m.status, dto.NewErrorResponse(dto.NewErrorDetail(m.code, message)))
		return
	}

	logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled API error")
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
}

package websocket

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/campusconnect/campusconnect/internal/app/coordinator"
	"github.com/campusconnect/campusconnect/internal/app/models/dto"
	"github.com/campusconnect/campusconnect/internal/pkg/auth"
	"github.com/campusconnect/campusconnect/internal/pkg/identity"
)

// Handler upgrades connections and gives each one a coordinator
type Handler struct {
	hub        *Hub
	jwtService *auth.JWTService
	deps       coordinator.Deps
	upgrader   websocket.Upgrader
	logger     zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, jwtService *auth.JWTService, deps coordinator.Deps, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:        hub,
		jwtService: jwtService,
		deps:       deps,
		upgrader:   newUpgrader(nil),
		logger:     logger,
	}
}

// AllowOrigins restricts the Origin header accepted on upgrade.
func (h *Handler) AllowOrigins(origins []string) {
	h.upgrader = newUpgrader(origins)
}

// HandleConnection upgrades GET /ws. The identity token is read from the
// token query parameter or the Authorization header; without one the
// connection starts signed out.
func (h *Handler) HandleConnection(c *gin.Context) {
	session := identity.NewSession()

	var claims *auth.Claims
	if token := bearer(c); token != "" {
		var err error
		claims, err = h.jwtService.ValidateAndExtractClaims(token)
		if err != nil {
			code := dto.ErrorCodeInvalidToken
			if errors.Is(err, auth.ErrExpiredToken) {
				code = dto.ErrorCodeExpiredToken
			}
			c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.NewErrorDetail(code, "Invalid or expired token")))
			return
		}
		session.SignIn(identity.Identity{UID: claims.UID(), Email: claims.Email})
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := newClient(h.hub, conn, session, h.logger)
	client.coord = coordinator.New(h.deps, session, client)
	if claims != nil && claims.ExpiresAt != nil {
		client.expiry = time.AfterFunc(time.Until(claims.ExpiresAt.Time), session.SignOut)
	}
	if !h.hub.Register(client) {
		client.close()
		conn.Close()
		return
	}

	go client.writePump()
	client.coord.Start(client.ctx)
	go client.readPump()

	client.logger.Info().Msg("WebSocket connection established")
}

func bearer(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	if header := c.GetHeader("Authorization"); header != "" {
		if token, err := auth.ExtractBearerToken(header); err == nil {
			return token
		}
	}
	return ""
}

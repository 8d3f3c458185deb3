package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusconnect/campusconnect/internal/app/models/dto"
	"github.com/campusconnect/campusconnect/internal/app/services"
	"github.com/campusconnect/campusconnect/internal/middleware"
)

// ProfileController handles profile, block and testimonial commands
type ProfileController struct {
	profileService services.ProfileService
}

// NewProfileController creates a new ProfileController
func NewProfileController(profileService services.ProfileService) *ProfileController {
	return &ProfileController{
		profileService: profileService,
	}
}

// SaveProfile creates or updates the caller's profile.
// PUT /api/v1/profile
func (c *ProfileController) SaveProfile(ctx *gin.Context) {
	var req dto.SaveProfileRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.profileService.SaveProfile(ctx, middleware.UID(ctx), middleware.Email(ctx), &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Profile saved"))
}

// SuggestSkills asks the suggestion service for skills matching the interests.
// POST /api/v1/profile/skills/suggest
func (c *ProfileController) SuggestSkills(ctx *gin.Context) {
	var req dto.SuggestSkillsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.profileService.SuggestSkills(ctx, middleware.UID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// ToggleBlock blocks or unblocks another user.
// POST /api/v1/users/:uid/block
func (c *ProfileController) ToggleBlock(ctx *gin.Context) {
	blocked, err := c.profileService.ToggleBlock(ctx, middleware.UID(ctx), ctx.Param("uid"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ToggleResponse{Active: blocked}, ""))
}

// AddTestimonial submits a quote for the landing page.
// POST /api/v1/testimonials
func (c *ProfileController) AddTestimonial(ctx *gin.Context) {
	var req dto.TestimonialRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	id, err := c.profileService.AddTestimonial(ctx, middleware.UID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.IDResponse{ID: id}, "Testimonial added"))
}

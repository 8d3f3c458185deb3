package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusconnect/campusconnect/internal/app/models/dto"
	"github.com/campusconnect/campusconnect/internal/app/services"
	"github.com/campusconnect/campusconnect/internal/middleware"
)

// CommunityController handles community, post and comment commands
type CommunityController struct {
	communityService services.CommunityService
}

// NewCommunityController creates a new CommunityController
func NewCommunityController(communityService services.CommunityService) *CommunityController {
	return &CommunityController{
		communityService: communityService,
	}
}

// CreateCommunity creates a community owned by the caller.
// POST /api/v1/communities
func (c *CommunityController) CreateCommunity(ctx *gin.Context) {
	var req dto.CreateCommunityRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	id, err := c.communityService.CreateCommunity(ctx, middleware.UID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.IDResponse{ID: id}, "Community created"))
}

// UpdateCommunity edits a community. Admins only.
// PUT /api/v1/communities/:id
func (c *CommunityController) UpdateCommunity(ctx *gin.Context) {
	var req dto.UpdateCommunityRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.communityService.UpdateCommunity(ctx, middleware.UID(ctx), ctx.Param("id"), &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Community updated"))
}

// ToggleFollow follows or unfollows a community.
// POST /api/v1/communities/:id/follow
func (c *CommunityController) ToggleFollow(ctx *gin.Context) {
	following, err := c.communityService.ToggleFollow(ctx, middleware.UID(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ToggleResponse{Active: following}, ""))
}

// AddAdmin promotes a user to community admin.
// POST /api/v1/communities/:id/admins
func (c *CommunityController) AddAdmin(ctx *gin.Context) {
	var req dto.AdminRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.communityService.AddAdmin(ctx, middleware.UID(ctx), ctx.Param("id"), req.UID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Admin added"))
}

// RemoveAdmin demotes an admin. The owner cannot be removed.
// DELETE /api/v1/communities/:id/admins/:uid
func (c *CommunityController) RemoveAdmin(ctx *gin.Context) {
	if err := c.communityService.RemoveAdmin(ctx, middleware.UID(ctx), ctx.Param("id"), ctx.Param("uid")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Admin removed"))
}

// CreatePost publishes a post and notifies the followers.
// POST /api/v1/communities/:id/posts
func (c *CommunityController) CreatePost(ctx *gin.Context) {
	var req dto.PostRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	id, err := c.communityService.CreatePost(ctx, middleware.UID(ctx), ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.IDResponse{ID: id}, "Post created"))
}

// UpdatePost edits a post.
// PUT /api/v1/communities/:id/posts/:postId
func (c *CommunityController) UpdatePost(ctx *gin.Context) {
	var req dto.PostRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	err := c.communityService.UpdatePost(ctx, middleware.UID(ctx), ctx.Param("id"), ctx.Param("postId"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Post updated"))
}

// DeletePost removes a post.
// DELETE /api/v1/communities/:id/posts/:postId
func (c *CommunityController) DeletePost(ctx *gin.Context) {
	if err := c.communityService.DeletePost(ctx, middleware.UID(ctx), ctx.Param("id"), ctx.Param("postId")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Post deleted"))
}

// ToggleLike likes or unlikes a post.
// POST /api/v1/communities/:id/posts/:postId/like
func (c *CommunityController) ToggleLike(ctx *gin.Context) {
	liked, err := c.communityService.ToggleLike(ctx, middleware.UID(ctx), ctx.Param("id"), ctx.Param("postId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ToggleResponse{Active: liked}, ""))
}

// AddComment comments on a post.
// POST /api/v1/communities/:id/posts/:postId/comments
func (c *CommunityController) AddComment(ctx *gin.Context) {
	var req dto.CommentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	id, err := c.communityService.AddComment(ctx, middleware.UID(ctx), ctx.Param("id"), ctx.Param("postId"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.IDResponse{ID: id}, "Comment added"))
}

// DeleteComment removes a comment. Its author and the community admins may.
// DELETE /api/v1/communities/:id/posts/:postId/comments/:commentId
func (c *CommunityController) DeleteComment(ctx *gin.Context) {
	err := c.communityService.DeleteComment(ctx, middleware.UID(ctx), ctx.Param("id"), ctx.Param("postId"), ctx.Param("commentId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Comment deleted"))
}

// Package router defines the closed set of views a connection can show.
//
// A View is one of the 21 variant structs below. Consumers switch over views
// by implementing Visitor, so adding a variant breaks every consumer until it
// handles the new case.
package router

import (
	"github.com/campusconnect/campusconnect/internal/app/models"
)

// Name identifies a view variant on the wire.
type Name string

const (
	NameLoading             Name = "LOADING"
	NameLanding             Name = "LANDING"
	NameAuth                Name = "AUTH"
	NameCreateProfile       Name = "CREATE_PROFILE"
	NameEditProfile         Name = "EDIT_PROFILE"
	NameHome                Name = "HOME"
	NameProfileDetail       Name = "PROFILE_DETAIL"
	NameChatInbox           Name = "CHAT_INBOX"
	NameChat                Name = "CHAT"
	NameNotifications       Name = "NOTIFICATIONS"
	NameCreateSession       Name = "CREATE_SESSION"
	NameMySessions          Name = "MY_SESSIONS"
	NameSkillSharing        Name = "SKILL_SHARING"
	NameDiscoverPeers       Name = "DISCOVER_PEERS"
	NameVideoSession        Name = "VIDEO_SESSION"
	NameCommunityAuth       Name = "COMMUNITY_AUTH"
	NameCreateCommunity     Name = "CREATE_COMMUNITY"
	NameCommunityPage       Name = "COMMUNITY_PAGE"
	NameMyCommunities       Name = "MY_COMMUNITIES"
	NameCommunityAdmin      Name = "COMMUNITY_ADMIN"
	NameCommunityPostDetail Name = "COMMUNITY_POST_DETAIL"
)

// View is a navigable screen with its payload.
type View interface {
	Name() Name
	Accept(v Visitor)
	view()
}

// Visitor has one method per view variant.
type Visitor interface {
	VisitLoading(Loading)
	VisitLanding(Landing)
	VisitAuth(Auth)
	VisitCreateProfile(CreateProfile)
	VisitEditProfile(EditProfile)
	VisitHome(Home)
	VisitProfileDetail(ProfileDetail)
	VisitChatInbox(ChatInbox)
	VisitChat(Chat)
	VisitNotifications(Notifications)
	VisitCreateSession(CreateSession)
	VisitMySessions(MySessions)
	VisitSkillSharing(SkillSharing)
	VisitDiscoverPeers(DiscoverPeers)
	VisitVideoSession(VideoSession)
	VisitCommunityAuth(CommunityAuth)
	VisitCreateCommunity(CreateCommunity)
	VisitCommunityPage(CommunityPage)
	VisitMyCommunities(MyCommunities)
	VisitCommunityAdmin(CommunityAdmin)
	VisitCommunityPostDetail(CommunityPostDetail)
}

type (
	Loading         struct{}
	Landing         struct{}
	Auth            struct{}
	Home            struct{}
	ChatInbox       struct{}
	EditProfile     struct{}
	Notifications   struct{}
	CreateSession   struct{}
	MySessions      struct{}
	SkillSharing    struct{}
	DiscoverPeers   struct{}
	CommunityAuth   struct{}
	CreateCommunity struct{}
	MyCommunities   struct{}
)

// CreateProfile is shown after the first sign-in of an identity without a profile.
type CreateProfile struct {
	Email string `json:"email"`
	UID   string `json:"uid"`
}

type ProfileDetail struct {
	User models.UserProfile `json:"user"`
}

// Chat is a conversation with OtherUser. ChatID is models.ChatID of the pair.
type Chat struct {
	ChatID    string             `json:"chatId"`
	OtherUser models.UserProfile `json:"otherUser"`
}

type VideoSession struct {
	Session models.Session `json:"session"`
}

type CommunityPage struct {
	Community models.Community `json:"community"`
}

type CommunityAdmin struct {
	Community models.Community `json:"community"`
}

type CommunityPostDetail struct {
	Post      models.CommunityPost `json:"post"`
	Community models.Community     `json:"community"`
}

func (Loading) Name() Name             { return NameLoading }
func (Landing) Name() Name             { return NameLanding }
func (Auth) Name() Name                { return NameAuth }
func (CreateProfile) Name() Name       { return NameCreateProfile }
func (EditProfile) Name() Name         { return NameEditProfile }
func (Home) Name() Name                { return NameHome }
func (ProfileDetail) Name() Name       { return NameProfileDetail }
func (ChatInbox) Name() Name           { return NameChatInbox }
func (Chat) Name() Name                { return NameChat }
func (Notifications) Name() Name       { return NameNotifications }
func (CreateSession) Name() Name       { return NameCreateSession }
func (MySessions) Name() Name          { return NameMySessions }
func (SkillSharing) Name() Name        { return NameSkillSharing }
func (DiscoverPeers) Name() Name       { return NameDiscoverPeers }
func (VideoSession) Name() Name        { return NameVideoSession }
func (CommunityAuth) Name() Name       { return NameCommunityAuth }
func (CreateCommunity) Name() Name     { return NameCreateCommunity }
func (CommunityPage) Name() Name       { return NameCommunityPage }
func (MyCommunities) Name() Name       { return NameMyCommunities }
func (CommunityAdmin) Name() Name      { return NameCommunityAdmin }
func (CommunityPostDetail) Name() Name { return NameCommunityPostDetail }

func (x Loading) Accept(v Visitor)             { v.VisitLoading(x) }
func (x Landing) Accept(v Visitor)             { v.VisitLanding(x) }
func (x Auth) Accept(v Visitor)                { v.VisitAuth(x) }
func (x CreateProfile) Accept(v Visitor)       { v.VisitCreateProfile(x) }
func (x EditProfile) Accept(v Visitor)         { v.VisitEditProfile(x) }
func (x Home) Accept(v Visitor)                { v.VisitHome(x) }
func (x ProfileDetail) Accept(v Visitor)       { v.VisitProfileDetail(x) }
func (x ChatInbox) Accept(v Visitor)           { v.VisitChatInbox(x) }
func (x Chat) Accept(v Visitor)                { v.VisitChat(x) }
func (x Notifications) Accept(v Visitor)       { v.VisitNotifications(x) }
func (x CreateSession) Accept(v Visitor)       { v.VisitCreateSession(x) }
func (x MySessions) Accept(v Visitor)          { v.VisitMySessions(x) }
func (x SkillSharing) Accept(v Visitor)        { v.VisitSkillSharing(x) }
func (x DiscoverPeers) Accept(v Visitor)       { v.VisitDiscoverPeers(x) }
func (x VideoSession) Accept(v Visitor)        { v.VisitVideoSession(x) }
func (x CommunityAuth) Accept(v Visitor)       { v.VisitCommunityAuth(x) }
func (x CreateCommunity) Accept(v Visitor)     { v.VisitCreateCommunity(x) }
func (x CommunityPage) Accept(v Visitor)       { v.VisitCommunityPage(x) }
func (x MyCommunities) Accept(v Visitor)       { v.VisitMyCommunities(x) }
func (x CommunityAdmin) Accept(v Visitor)      { v.VisitCommunityAdmin(x) }
func (x CommunityPostDetail) Accept(v Visitor) { v.VisitCommunityPostDetail(x) }

func (Loading) view()             {}
func (Landing) view()             {}
func (Auth) view()                {}
func (CreateProfile) view()       {}
func (EditProfile) view()         {}
func (Home) view()                {}
func (ProfileDetail) view()       {}
func (ChatInbox) view()           {}
func (Chat) view()                {}
func (Notifications) view()       {}
func (CreateSession) view()       {}
func (MySessions) view()          {}
func (SkillSharing) view()        {}
func (DiscoverPeers) view()       {}
func (VideoSession) view()        {}
func (CommunityAuth) view()       {}
func (CreateCommunity) view()     {}
func (CommunityPage) view()       {}
func (MyCommunities) view()       {}
func (CommunityAdmin) view()      {}
func (CommunityPostDetail) view() {}

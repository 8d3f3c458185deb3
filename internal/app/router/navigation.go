package router

import "fmt"

// Initial is the view of a fresh connection.
func Initial() View { return Loading{} }

// SignedOut is the view shown once the identity goes away.
func SignedOut() View { return Landing{} }

// AfterSignIn picks the view once an identity resolved: HOME when it has a
// profile, otherwise the profile form for that identity.
func AfterSignIn(hasProfile bool, uid, email string) View {
	if hasProfile {
		return Home{}
	}
	return CreateProfile{Email: email, UID: uid}
}

// Back returns the fixed predecessor of v. There is no history: the
// predecessor only depends on the current view.
func Back(v View) View {
	b := &backVisitor{}
	v.Accept(b)
	return b.to
}

type backVisitor struct{ to View }

func (b *backVisitor) VisitLoading(x Loading)             { b.to = x }
func (b *backVisitor) VisitLanding(x Landing)             { b.to = x }
func (b *backVisitor) VisitAuth(Auth)                     { b.to = Landing{} }
func (b *backVisitor) VisitCreateProfile(x CreateProfile) { b.to = x }
func (b *backVisitor) VisitEditProfile(EditProfile)       { b.to = Home{} }
func (b *backVisitor) VisitHome(x Home)                   { b.to = x }
func (b *backVisitor) VisitProfileDetail(ProfileDetail)   { b.to = Home{} }
func (b *backVisitor) VisitChatInbox(ChatInbox)           { b.to = Home{} }
func (b *backVisitor) VisitChat(Chat)                     { b.to = ChatInbox{} }
func (b *backVisitor) VisitNotifications(Notifications)   { b.to = Home{} }
func (b *backVisitor) VisitCreateSession(CreateSession)   { b.to = MySessions{} }
func (b *backVisitor) VisitMySessions(MySessions)         { b.to = Home{} }
func (b *backVisitor) VisitSkillSharing(SkillSharing)     { b.to = Home{} }
func (b *backVisitor) VisitDiscoverPeers(DiscoverPeers)   { b.to = Home{} }
func (b *backVisitor) VisitVideoSession(VideoSession)     { b.to = Home{} }
func (b *backVisitor) VisitCommunityAuth(CommunityAuth)   { b.to = Home{} }
func (b *backVisitor) VisitCreateCommunity(CreateCommunity) {
	b.to = MyCommunities{}
}
func (b *backVisitor) VisitCommunityPage(CommunityPage) { b.to = MyCommunities{} }
func (b *backVisitor) VisitMyCommunities(MyCommunities) { b.to = Home{} }
func (b *backVisitor) VisitCommunityAdmin(x CommunityAdmin) {
	b.to = CommunityPage{Community: x.Community}
}
func (b *backVisitor) VisitCommunityPostDetail(x CommunityPostDetail) {
	b.to = CommunityPage{Community: x.Community}
}

// Target is a navigation request from a client. Views with a payload are
// addressed by id and resolved against the connection's state.
type Target struct {
	Name        Name   `json:"name"`
	UID         string `json:"uid,omitempty"`
	SessionID   string `json:"sessionId,omitempty"`
	CommunityID string `json:"communityId,omitempty"`
	PostID      string `json:"postId,omitempty"`
}

// Validate checks that the target names a view and carries the ids it needs.
func (t Target) Validate() error {
	if !Valid(t.Name) {
		return fmt.Errorf("%w: %q", ErrUnknownView, t.Name)
	}
	missing := func(field string) error {
		return fmt.Errorf("view %s requires %s", t.Name, field)
	}
	switch t.Name {
	case NameProfileDetail, NameChat:
		if t.UID == "" {
			return missing("uid")
		}
	case NameVideoSession:
		if t.SessionID == "" {
			return missing("sessionId")
		}
	case NameCommunityPage, NameCommunityAdmin:
		if t.CommunityID == "" {
			return missing("communityId")
		}
	case NameCommunityPostDetail:
		if t.CommunityID == "" || t.PostID == "" {
			return missing("communityId and postId")
		}
	case NameCreateProfile:
		return fmt.Errorf("view %s cannot be requested", t.Name)
	}
	return nil
}

// Simple returns the view called name when it carries no payload.
func Simple(name Name) (View, bool) {
	switch name {
	case NameLoading:
		return Loading{}, true
	case NameLanding:
		return Landing{}, true
	case NameAuth:
		return Auth{}, true
	case NameEditProfile:
		return EditProfile{}, true
	case NameHome:
		return Home{}, true
	case NameChatInbox:
		return ChatInbox{}, true
	case NameNotifications:
		return Notifications{}, true
	case NameCreateSession:
		return CreateSession{}, true
	case NameMySessions:
		return MySessions{}, true
	case NameSkillSharing:
		return SkillSharing{}, true
	case NameDiscoverPeers:
		return DiscoverPeers{}, true
	case NameCommunityAuth:
		return CommunityAuth{}, true
	case NameCreateCommunity:
		return CreateCommunity{}, true
	case NameMyCommunities:
		return MyCommunities{}, true
	}
	return nil, false
}

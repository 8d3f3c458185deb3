package router

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownView is returned when a name is not one of the view variants.
var ErrUnknownView = errors.New("unknown view")

// Marshal encodes v as a flat object: {"name": ..., payload fields...}.
func Marshal(v View) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, err
	}
	name, _ := json.Marshal(v.Name())
	fields["name"] = name
	return json.Marshal(fields)
}

var decoders = map[Name]func([]byte) (View, error){
	NameLoading:             decodeAs[Loading],
	NameLanding:             decodeAs[Landing],
	NameAuth:                decodeAs[Auth],
	NameCreateProfile:       decodeAs[CreateProfile],
	NameEditProfile:         decodeAs[EditProfile],
	NameHome:                decodeAs[Home],
	NameProfileDetail:       decodeAs[ProfileDetail],
	NameChatInbox:           decodeAs[ChatInbox],
	NameChat:                decodeAs[Chat],
	NameNotifications:       decodeAs[Notifications],
	NameCreateSession:       decodeAs[CreateSession],
	NameMySessions:          decodeAs[MySessions],
	NameSkillSharing:        decodeAs[SkillSharing],
	NameDiscoverPeers:       decodeAs[DiscoverPeers],
	NameVideoSession:        decodeAs[VideoSession],
	NameCommunityAuth:       decodeAs[CommunityAuth],
	NameCreateCommunity:     decodeAs[CreateCommunity],
	NameCommunityPage:       decodeAs[CommunityPage],
	NameMyCommunities:       decodeAs[MyCommunities],
	NameCommunityAdmin:      decodeAs[CommunityAdmin],
	NameCommunityPostDetail: decodeAs[CommunityPostDetail],
}

// Unmarshal decodes the output of Marshal.
func Unmarshal(data []byte) (View, error) {
	var head struct {
		Name Name `json:"name"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	decode, ok := decoders[head.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, head.Name)
	}
	return decode(data)
}

func decodeAs[T View](data []byte) (View, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Valid reports whether name is a view variant.
func Valid(name Name) bool {
	_, ok := decoders[name]
	return ok
}

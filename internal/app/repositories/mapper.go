package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/campusconnect/campusconnect/internal/app/models"
	"github.com/campusconnect/campusconnect/internal/pkg/docstore"
	"github.com/campusconnect/campusconnect/internal/pkg/timestamp"
)

// ErrUnscheduled marks a session document without a usable scheduledAt.
var ErrUnscheduled = errors.New("session has no scheduled time")

// Mapper turns a store document into an entity.
type Mapper[T any] func(docstore.Document) (T, error)

// decode normalizes the top-level time values of doc, attaches its id under
// idField and decodes the result into T.
func decode[T any](doc docstore.Document, idField string) (T, error) {
	var out T
	fields := timestamp.Normalize(doc.Data)
	if fields == nil {
		fields = map[string]any{}
	}
	fields[idField] = doc.ID
	raw, err := json.Marshal(fields)
	if err != nil {
		return out, fmt.Errorf("encode %s: %w", doc.Path, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", doc.Path, err)
	}
	return out, nil
}

// MapUser decodes a users document; the document id is the uid.
func MapUser(doc docstore.Document) (models.UserProfile, error) {
	u, err := decode[models.UserProfile](doc, "uid")
	if err != nil {
		return u, err
	}
	if u.Skills == nil {
		u.Skills = []string{}
	}
	return u, nil
}

// MapSession decodes a sessions document. Documents whose scheduledAt is not a
// time value are rejected.
func MapSession(doc docstore.Document) (models.Session, error) {
	if _, ok := timestamp.Convert(doc.Data["scheduledAt"]); !ok {
		return models.Session{}, fmt.Errorf("%s: %w", doc.Path, ErrUnscheduled)
	}
	s, err := decode[models.Session](doc, "id")
	if err != nil {
		return s, err
	}
	if s.Status == "" {
		s.Status = models.SessionStatusScheduled
	}
	return s, nil
}

// MapTestimonial decodes a testimonials document.
func MapTestimonial(doc docstore.Document) (models.Testimonial, error) {
	return decode[models.Testimonial](doc, "id")
}

// MapCommunity decodes a communities document.
func MapCommunity(doc docstore.Document) (models.Community, error) {
	return decode[models.Community](doc, "id")
}

// MapPost decodes a posts document. The community id falls back to the parent path.
func MapPost(doc docstore.Document) (models.CommunityPost, error) {
	p, err := decode[models.CommunityPost](doc, "id")
	if err != nil {
		return p, err
	}
	if p.CommunityID == "" {
		p.CommunityID = parentID(doc.Path, 2)
	}
	return p, nil
}

// MapComment decodes a comments document.
func MapComment(doc docstore.Document) (models.Comment, error) {
	c, err := decode[models.Comment](doc, "id")
	if err != nil {
		return c, err
	}
	if c.PostID == "" {
		c.PostID = parentID(doc.Path, 2)
	}
	if c.CommunityID == "" {
		c.CommunityID = parentID(doc.Path, 4)
	}
	return c, nil
}

// MapNotification decodes a notifications document.
func MapNotification(doc docstore.Document) (models.Notification, error) {
	return decode[models.Notification](doc, "id")
}

// MapChat decodes a chats document. Normalization only reaches top-level
// fields, so the nested lastMessage time is normalized here.
func MapChat(doc docstore.Document) (models.ChatConversation, error) {
	data := doc.Data
	if last, ok := data["lastMessage"].(map[string]any); ok {
		data = make(map[string]any, len(doc.Data))
		for k, v := range doc.Data {
			data[k] = v
		}
		if _, ok := timestamp.Convert(last["createdAt"]); ok {
			data["lastMessage"] = timestamp.Normalize(last)
		} else {
			// A snapshot without a resolved time has no usable last message.
			delete(data, "lastMessage")
		}
	}
	return decode[models.ChatConversation](docstore.Document{ID: doc.ID, Path: doc.Path, Data: data}, "id")
}

// MapMessage decodes a messages document.
func MapMessage(doc docstore.Document) (models.ChatMessage, error) {
	return decode[models.ChatMessage](doc, "id")
}

// parentID returns the path segment `up` positions before the last one.
func parentID(path string, up int) string {
	segs := strings.Split(path, "/")
	i := len(segs) - 1 - up
	if i < 0 {
		return ""
	}
	return segs[i]
}

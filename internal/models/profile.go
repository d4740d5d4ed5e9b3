package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recognised social platforms.
const (
	PlatformYouTube   = "youtube"
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
	PlatformTwitter   = "twitter"
	PlatformLinkedIn  = "linkedin"
)

var SocialPlatforms = []string{
	PlatformYouTube,
	PlatformInstagram,
	PlatformFacebook,
	PlatformTwitter,
	PlatformLinkedIn,
}

// Profile is the per-user developer profile stored in the profiles collection.
// OwnerID is unique across the collection.
type Profile struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID    primitive.ObjectID `json:"user" bson:"user"`
	Website    string             `json:"website,omitempty" bson:"website,omitempty"`
	Status     string             `json:"status,omitempty" bson:"status,omitempty"`
	Skills     []string           `json:"skills" bson:"skills"`
	Social     map[string]string  `json:"social" bson:"social"`
	Experience []Experience       `json:"experience" bson:"experience"`
	Education  []Education        `json:"education" bson:"education"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

// ProfileView is a profile joined with its owner's display fields.
// In JSON the expanded User shadows Profile.OwnerID under the "user" key.
type ProfileView struct {
	Profile `bson:",inline"`
	User    UserRef `json:"user" bson:"owner"`
}

type Experience struct {
	ID          string `json:"id" bson:"id"`
	Title       string `json:"title" bson:"title"`
	Company     string `json:"company" bson:"company"`
	Location    string `json:"location,omitempty" bson:"location,omitempty"`
	Description string `json:"description" bson:"description"`
	From        string `json:"from,omitempty" bson:"from,omitempty"`
	To          string `json:"to,omitempty" bson:"to,omitempty"`
	Current     bool   `json:"current" bson:"current"`
}

func (e Experience) EntryID() string { return e.ID }

func (e Experience) WithEntryID(id string) Experience {
	e.ID = id
	return e
}

type Education struct {
	ID           string `json:"id" bson:"id"`
	School       string `json:"school" bson:"school"`
	Degree       string `json:"degree" bson:"degree"`
	FieldOfStudy string `json:"fieldofstudy" bson:"fieldofstudy"`
	From         string `json:"from,omitempty" bson:"from,omitempty"`
	To           string `json:"to,omitempty" bson:"to,omitempty"`
	Current      bool   `json:"current" bson:"current"`
	Description  string `json:"description,omitempty" bson:"description,omitempty"`
}

func (e Education) EntryID() string { return e.ID }

func (e Education) WithEntryID(id string) Education {
	e.ID = id
	return e
}

// ProfileUpdate carries only the fields a caller supplied. A nil pointer or a
// missing Social key means "leave as is".
type ProfileUpdate struct {
	Website *string
	Status  *string
	// Skills is the raw comma separated list.
	Skills *string
	Social map[string]string
}

// Clone returns a deep copy so stores never hand out shared slices or maps.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Skills = cloneSlice(p.Skills)
	cp.Experience = cloneSlice(p.Experience)
	cp.Education = cloneSlice(p.Education)
	cp.Social = make(map[string]string, len(p.Social))
	for k, v := range p.Social {
		cp.Social[k] = v
	}
	return &cp
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

package entity

import "strings"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

const MaxUserPhotos = 6

type Profile struct {
	UID       string   `json:"uid,omitempty"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Gender    *Gender  `json:"gender"`
	About     string   `json:"about"`
	Interests string   `json:"interests"`
	Photos    []string `json:"photos,omitempty"`
}

// PrimaryPhoto is the first photo reference, or nil when the list is empty.
func (p *Profile) PrimaryPhoto() *string {
	if p == nil {
		return nil
	}
	return FirstPhoto(p.Photos)
}

// EffectivePhoto is the photo shown to chat partners: the profile's primary
// photo, falling back to the first entry of the standalone photo list.
func EffectivePhoto(profile *Profile, photos []string) *string {
	if photo := profile.PrimaryPhoto(); photo != nil {
		return photo
	}
	return FirstPhoto(photos)
}

func FirstPhoto(photos []string) *string {
	if len(photos) == 0 || photos[0] == "" {
		return nil
	}
	photo := photos[0]
	return &photo
}

type Meta struct {
	Email string `json:"email"`
}

type User struct {
	Profile *Profile `json:"profile,omitempty"`
	Meta    *Meta    `json:"meta,omitempty"`
}

// Identity is what the identity subsystem knows about an authenticated account.
type Identity struct {
	UID         string
	DisplayName string
	Email       string
}

// SplitDisplayName takes the first word as first name and the rest as last name.
func SplitDisplayName(displayName string) (string, string) {
	words := strings.Fields(displayName)
	if len(words) == 0 {
		return "", ""
	}
	return words[0], strings.Join(words[1:], " ")
}

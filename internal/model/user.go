package model

import "time"

const (
	RoleStudent = "STUDENT"
	RoleTutor   = "TUTOR"
)

// User is read-only from this service's point of view; account management
// lives outside the core.
type User struct {
	ID        string        `json:"id"`
	Email     string        `json:"email"`
	Name      string        `json:"name"`
	Role      string        `json:"role"`
	Phone     string        `json:"phone,omitempty"`
	Gender    string        `json:"gender,omitempty"`
	DOB       string        `json:"dob,omitempty"`
	Faculty   string        `json:"faculty,omitempty"`
	Profile   *TutorProfile `json:"tutorProfile,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// TutorProfile holds the tutor-only profile fields.
type TutorProfile struct {
	Expertise  []string `json:"expertise"`
	Bio        string   `json:"bio,omitempty"`
	OfficeRoom string   `json:"officeRoom,omitempty"`
}

// TutorSummary is the slice of a tutor shown next to sessions.
type TutorSummary struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Expertise  []string `json:"expertise"`
	Bio        string   `json:"bio,omitempty"`
	OfficeRoom string   `json:"officeRoom,omitempty"`
}

// Summary builds the session-listing view of a tutor. The detailed form
// additionally carries bio and office room for the session detail page.
func (u *User) Summary(detailed bool) *TutorSummary {
	sum := &TutorSummary{ID: u.ID, Name: u.Name, Expertise: []string{}}
	if u.Profile != nil {
		if u.Profile.Expertise != nil {
			sum.Expertise = u.Profile.Expertise
		}
		if detailed {
			sum.Bio = u.Profile.Bio
			sum.OfficeRoom = u.Profile.OfficeRoom
		}
	}
	return sum
}

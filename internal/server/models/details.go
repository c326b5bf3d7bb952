package models

import (
	"time"

	"github.com/google/uuid"
)

type SocialProfile struct {
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	Platform   string    `db:"platform" json:"platform"`
	ProfileURL string    `db:"profile_url" json:"profile_url"`
}

type EducationHistory struct {
	UserID          uuid.UUID  `db:"user_id" json:"user_id"`
	InstitutionName string     `db:"institution_name" json:"institution_name"`
	Degree          string     `db:"degree" json:"degree"`
	GraduationDate  *time.Time `db:"graduation_date" json:"graduation_date,omitempty"`
}

type WorkExperience struct {
	UserID        uuid.UUID  `db:"user_id" json:"user_id"`
	CompanyName   string     `db:"company_name" json:"company_name"`
	PositionTitle string     `db:"position_title" json:"position_title"`
	StartDate     time.Time  `db:"start_date" json:"start_date"`
	EndDate       *time.Time `db:"end_date" json:"end_date,omitempty"`
}

type Skill struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	SkillName string    `db:"skill_name" json:"skill_name"`
}

// Details groups the one-to-many records attached to a user.
type Details struct {
	SocialProfiles []SocialProfile    `json:"social_profiles"`
	Education      []EducationHistory `json:"education"`
	WorkExperience []WorkExperience   `json:"work_experience"`
	Skills         []Skill            `json:"skills"`
}

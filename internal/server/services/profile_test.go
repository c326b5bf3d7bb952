package services

import (
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestLoadProfile(t *testing.T) {
	env := newTestEnv(t)
	u := env.registerAlice(t)

	view, err := env.profiles.LoadProfile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, &ProfileView{
		Email:         "alice@example.com",
		StreetAddress: "1 Rabbit Hole",
		PhoneNumber:   "+1 555 0100",
		Hobbies:       "croquet",
		Bio:           "curious",
	}, view)

	_, err = env.profiles.LoadProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdateProfile_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerAlice(t)

	update := ProfileUpdate{
		Email:         ptr("alice@wonderland.example"),
		StreetAddress: ptr("2 Looking Glass Lane"),
		PhoneNumber:   ptr("+44 20 0000"),
		Hobbies:       ptr("chess"),
		Bio:           ptr("through the glass"),
	}
	require.NoError(t, env.profiles.UpdateProfile(ctx, u.ID, update))

	view, err := env.profiles.LoadProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, &ProfileView{
		Email:         *update.Email,
		StreetAddress: *update.StreetAddress,
		PhoneNumber:   *update.PhoneNumber,
		Hobbies:       *update.Hobbies,
		Bio:           *update.Bio,
	}, view)

	// untouched fields survive
	prof, err := env.rm.Profiles(env.store).Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", prof.FirstName)
	addr, err := env.rm.Addresses(env.store).Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oxford", addr.City)

	got, err := env.credentials.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
}

func TestUpdateProfile_Partial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerAlice(t)

	require.NoError(t, env.profiles.UpdateProfile(ctx, u.ID, ProfileUpdate{Bio: ptr("")}))

	view, err := env.profiles.LoadProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "", view.Bio)
	assert.Equal(t, "croquet", view.Hobbies)
	assert.Equal(t, "alice@example.com", view.Email)
}

func TestUpdateProfile_DuplicateEmailChangesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerAlice(t)

	bob := aliceRegistration()
	bob.Username, bob.Email = "bob", "bob@example.com"
	_, err := env.credentials.CreateUser(ctx, bob)
	require.NoError(t, err)

	err = env.profiles.UpdateProfile(ctx, u.ID, ProfileUpdate{
		Email: ptr("bob@example.com"),
		Bio:   ptr("changed"),
	})
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)

	view, err := env.profiles.LoadProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", view.Email)
	assert.Equal(t, "curious", view.Bio)
}

func TestUpdateProfile_Validation(t *testing.T) {
	env := newTestEnv(t)
	u := env.registerAlice(t)

	tests := []struct {
		name   string
		update ProfileUpdate
		field  string
	}{
		{"empty email", ProfileUpdate{Email: ptr("")}, "email"},
		{"bad email", ProfileUpdate{Email: ptr("alice")}, "email"},
		{"long phone", ProfileUpdate{PhoneNumber: ptr("123456789012345678901")}, "phone_number"},
		{"long bio", ProfileUpdate{Bio: ptr(string(make([]byte, 301)))}, "bio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.profiles.UpdateProfile(context.Background(), u.ID, tt.update)
			var verr *common.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	err := env.profiles.UpdateProfile(context.Background(), uuid.New(), ProfileUpdate{Bio: ptr("x")})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDetails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerAlice(t)

	require.NoError(t, env.profiles.AddSocialProfile(ctx, u.ID, SocialProfileInput{
		Platform: "github", ProfileURL: "https://github.com/alice",
	}))
	require.NoError(t, env.profiles.AddEducation(ctx, u.ID, EducationInput{
		InstitutionName: "Oxford", Degree: "BA", GraduationDate: "30/06/2012",
	}))
	require.NoError(t, env.profiles.AddWorkExperience(ctx, u.ID, WorkExperienceInput{
		CompanyName: "Acme", PositionTitle: "Engineer", StartDate: "01/09/2012",
	}))
	require.NoError(t, env.profiles.AddSkill(ctx, u.ID, SkillInput{SkillName: "Go"}))

	d, err := env.profiles.Details(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, d.SocialProfiles, 1)
	require.Len(t, d.Education, 1)
	require.Len(t, d.WorkExperience, 1)
	require.Len(t, d.Skills, 1)
	assert.Equal(t, 2012, d.Education[0].GraduationDate.Year())
	assert.Nil(t, d.WorkExperience[0].EndDate)

	// one row per kind
	err = env.profiles.AddSkill(ctx, u.ID, SkillInput{SkillName: "SQL"})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestDetails_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerAlice(t)

	err := env.profiles.AddSocialProfile(ctx, u.ID, SocialProfileInput{Platform: "x", ProfileURL: "not a url"})
	assert.ErrorIs(t, err, common.ErrValidation)

	err = env.profiles.AddWorkExperience(ctx, u.ID, WorkExperienceInput{
		CompanyName: "Acme", PositionTitle: "Engineer", StartDate: "01/09/2012", EndDate: "01/09/2011",
	})
	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "end_date")

	err = env.profiles.AddSkill(ctx, u.ID, SkillInput{})
	assert.ErrorIs(t, err, common.ErrValidation)

	err = env.profiles.AddEducation(ctx, u.ID, EducationInput{InstitutionName: "Uni", Degree: strings.Repeat("d", 60)})
	assert.ErrorIs(t, err, common.ErrValidation)
}

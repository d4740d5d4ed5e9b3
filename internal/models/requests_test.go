package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertProfileRequestValidate(t *testing.T) {
	req := &UpsertProfileRequest{Status: "Developer"}

	errs := req.Validate()

	require.Len(t, errs, 2)
	assert.Equal(t, FieldError{Param: "website", Msg: "Website is required"}, errs[0])
	assert.Equal(t, FieldError{Param: "skills", Msg: "Skills is required"}, errs[1])
}

func TestUpsertProfileRequestValid(t *testing.T) {
	req := &UpsertProfileRequest{Website: "a.com", Status: "dev", Skills: "go"}
	assert.Empty(t, req.Validate())
}

func TestUpsertProfileRequestToUpdate(t *testing.T) {
	req := &UpsertProfileRequest{
		Website: "a.com",
		Status:  "dev",
		Skills:  "go, rust",
		Twitter: "https://twitter.com/dev",
	}

	upd := req.ToUpdate()

	require.NotNil(t, upd.Website)
	assert.Equal(t, "a.com", *upd.Website)
	require.NotNil(t, upd.Skills)
	assert.Equal(t, "go, rust", *upd.Skills)
	assert.Equal(t, map[string]string{PlatformTwitter: "https://twitter.com/dev"}, upd.Social)
}

func TestUpsertProfileRequestToUpdateOmitsEmpty(t *testing.T) {
	upd := (&UpsertProfileRequest{Status: "dev"}).ToUpdate()

	assert.Nil(t, upd.Website)
	assert.Nil(t, upd.Skills)
	assert.Empty(t, upd.Social)
}

func TestAddExperienceRequestValidate(t *testing.T) {
	errs := (&AddExperienceRequest{Title: "Eng"}).Validate()

	require.Len(t, errs, 2)
	assert.Equal(t, "company", errs[0].Param)
	assert.Equal(t, "experience", errs[1].Param)
	assert.Equal(t, "Experience is required", errs[1].Msg)
}

func TestAddExperienceRequestToExperience(t *testing.T) {
	req := &AddExperienceRequest{Title: "Eng", Company: "X", Description: "built things", From: "2020"}

	exp := req.ToExperience()

	assert.Empty(t, exp.ID)
	assert.Equal(t, "built things", exp.Description)
	assert.Equal(t, "2020", exp.From)
}

func TestAddEducationRequestValidate(t *testing.T) {
	errs := (&AddEducationRequest{School: "MIT", Degree: "BSc"}).Validate()

	require.Len(t, errs, 1)
	assert.Equal(t, FieldError{Param: "fieldofstudy", Msg: "Field of study is required"}, errs[0])
}

func TestProfileCloneIsDeep(t *testing.T) {
	p := &Profile{
		Skills:     []string{"go"},
		Social:     map[string]string{PlatformYouTube: "yt"},
		Experience: []Experience{{ID: "1"}},
	}

	cp := p.Clone()
	cp.Skills[0] = "rust"
	cp.Social[PlatformYouTube] = "changed"
	cp.Experience[0].ID = "2"

	assert.Equal(t, "go", p.Skills[0])
	assert.Equal(t, "yt", p.Social[PlatformYouTube])
	assert.Equal(t, "1", p.Experience[0].ID)
	assert.NotNil(t, cp.Education)
}

package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagSet(tags ...Tag) TagSet {
	s := make(TagSet)
	s.Add(tags...)
	return s
}

func TestDeriveTags(t *testing.T) {
	sub := &Submission{
		Email: "a@x.com",
		Answers: Answers{
			AIUsage:        "Curious",
			AIStage:        "Experimenting",
			Challenge:      "quality",
			MonthlyLeads:   "26-50",
			TargetAudience: "unclear",
			DesiredAction:  " Clear ",
			HelpNeeded:     StringList{"automation", "video", "bogus"},
			Interests:      StringList{"Avatar"},
		},
	}

	tags := DeriveTags(sub)

	assert.Equal(t, []Tag{
		"ai-curious",
		"audience-unclear",
		"blocked-quality",
		"business-growth",
		"cta-clear",
		"help-automation",
		"help-video",
		"prefers-avatar",
		"stage-experimenting",
	}, tags.Sorted())
}

func TestDeriveTags_UnrecognisedValuesAddNothing(t *testing.T) {
	sub := &Submission{
		Email: "a@x.com",
		Answers: Answers{
			AIUsage:      "sometimes",
			AIStage:      "Guru",
			Challenge:    "motivation",
			MonthlyLeads: "lots",
			HelpNeeded:   StringList{"hiring"},
		},
	}

	assert.Empty(t, DeriveTags(sub))
}

func TestDeriveTags_HighVolumeAddsScaleAndVolumeTags(t *testing.T) {
	for _, leads := range []string{"51-100", "100+"} {
		tags := DeriveTags(&Submission{Answers: Answers{MonthlyLeads: leads}})
		assert.True(t, tags.Has("business-scale"), leads)
		assert.True(t, tags.Has("volume-high"), leads)
	}
}

func TestTagGroupsFirstMatchOrder(t *testing.T) {
	var awareness singleChoiceGroup
	for _, g := range tagGroups {
		if g.name == "awareness" {
			awareness = g
		}
	}
	require.NotEmpty(t, awareness.rules)

	names := make([]string, len(awareness.rules))
	for i, r := range awareness.rules {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"no-ai", "curious", "dabbled", "regular"}, names)
}

func TestCalculateScore(t *testing.T) {
	tests := []struct {
		name    string
		answers Answers
		want    int
	}{
		{name: "empty submission scores the base", answers: Answers{}, want: 15},
		{
			name:    "lead volume tiers",
			answers: Answers{MonthlyLeads: "11-25"},
			want:    25,
		},
		{
			name:    "clarity bonuses",
			answers: Answers{TargetAudience: "clear", DesiredAction: "clear"},
			want:    35,
		},
		{
			name:    "unclear answers earn nothing",
			answers: Answers{TargetAudience: "somewhat", DesiredAction: "unclear"},
			want:    15,
		},
		{
			name:    "help needed bonuses co-occur",
			answers: Answers{HelpNeeded: StringList{"automation", "content", "content"}},
			want:    25,
		},
		{
			name:    "short free text is ignored",
			answers: Answers{Website: "a.io", AlignmentStatement: "too short"},
			want:    15,
		},
		{
			name:    "long free text earns points",
			answers: Answers{Website: "https://example.com", AlignmentStatement: "We want to grow our community with AI"},
			want:    25,
		},
		{
			name:    "resources opt-in",
			answers: Answers{WantResources: "yes"},
			want:    25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateScore(&Submission{Email: "a@x.com", Answers: tt.answers}))
		})
	}
}

func TestCalculateScore_ClampsAtOneHundred(t *testing.T) {
	sub := &Submission{
		Email: "max@x.com",
		Answers: Answers{
			MonthlyLeads:       "100+",
			TargetAudience:     "clear",
			DesiredAction:      "clear",
			AIStage:            "Expert",
			WantResources:      "Yes",
			HelpNeeded:         StringList{"lead-generation", "automation", "content", "video"},
			Website:            "https://example.com",
			AlignmentStatement: "Our mission lines up with the community completely",
		},
	}

	score := CalculateScore(sub)
	assert.Equal(t, 100, score)
	assert.Equal(t, BandPriority, GetScoreBand(score))
}

func TestGetScoreBand(t *testing.T) {
	tests := []struct {
		score int
		want  Band
	}{
		{0, BandNurture},
		{29, BandNurture},
		{30, BandEngage},
		{59, BandEngage},
		{60, BandQualified},
		{79, BandQualified},
		{80, BandPriority},
		{100, BandPriority},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetScoreBand(tt.score), "score %d", tt.score)
	}
}

func TestAssignVariant(t *testing.T) {
	tests := []struct {
		name string
		tags TagSet
		want Variant
	}{
		{"avatar beats production", tagSet("prefers-avatar", "stage-production"), VariantAvatar},
		{"production beats experimenting", tagSet("stage-production", "stage-experimenting"), VariantProduction},
		{"experimenting beats growth", tagSet("stage-experimenting", "business-scale"), VariantExperimenter},
		{"growth", tagSet("business-growth"), VariantGrowth},
		{"scale", tagSet("business-scale"), VariantGrowth},
		{"default", tagSet("ai-none"), VariantGeneral},
		{"empty", tagSet(), VariantGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AssignVariant(tt.tags))
		})
	}
}

func TestSelectSMSTemplate(t *testing.T) {
	tests := []struct {
		name string
		tags TagSet
		band Band
		want SMSTemplate
	}{
		{"priority band wins outright", tagSet("blocked-time", "blocked-cost"), BandPriority, TemplateHighScore},
		{"time beats cost", tagSet("blocked-time", "blocked-cost"), BandQualified, TemplateTime},
		{"cost", tagSet("blocked-cost"), BandEngage, TemplateCost},
		{"experimenting and quality", tagSet("stage-experimenting", "blocked-quality"), BandEngage, TemplateQuality},
		{"quality alone is not enough", tagSet("blocked-quality"), BandEngage, TemplateGeneral},
		{"default", tagSet(), BandNurture, TemplateGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectSMSTemplate(tt.tags, tt.band))
		})
	}
}

func TestClassify_IsDeterministic(t *testing.T) {
	sub := &Submission{
		Email: "a@x.com",
		Answers: Answers{
			AIUsage:      "dabbled",
			AIStage:      "Production",
			Challenge:    "time",
			MonthlyLeads: "51-100",
			HelpNeeded:   StringList{"video", "automation"},
			Interests:    StringList{"voice", "workshops"},
		},
	}

	first := Classify(sub)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Classify(sub))
	}
}

func TestClassify_HighScoringLead(t *testing.T) {
	sub := &Submission{
		Email: "a@x.com",
		Answers: Answers{
			MonthlyLeads:   "51-100",
			AIStage:        "Expert",
			TargetAudience: "clear",
			DesiredAction:  "clear",
			WantResources:  "Yes",
		},
	}

	result := Classify(sub)

	assert.GreaterOrEqual(t, result.Score, 80)
	assert.Equal(t, BandPriority, result.Band)
	assert.Equal(t, TemplateHighScore, result.SMSTemplate)
	assert.Equal(t, VariantProduction, result.Variant)
}

func TestStringListUnmarshal(t *testing.T) {
	var sub Submission
	require.NoError(t, json.Unmarshal([]byte(`{"email":"a@x.com","helpNeeded":"video","interests":["avatar","voice"]}`), &sub))

	assert.Equal(t, StringList{"video"}, sub.HelpNeeded)
	assert.Equal(t, StringList{"avatar", "voice"}, sub.Interests)
}

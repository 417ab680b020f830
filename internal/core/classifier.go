package core

import (
	"strings"

	"github.com/mikey/lead-qualifier/internal/utils"
)

const (
	baseScore = 15
	maxScore  = 100

	minWebsiteLength   = 8
	minAlignmentLength = 20
)

// equals matches a normalised answer against any of the given values
func equals(values ...string) func(string) bool {
	normalized := make([]string, len(values))
	for i, v := range values {
		normalized[i] = utils.NormalizeAnswer(v)
	}
	return func(answer string) bool {
		for _, v := range normalized {
			if answer == v {
				return true
			}
		}
		return false
	}
}

// singleChoiceGroup derives at most one result from one answer field
type singleChoiceGroup struct {
	name  string
	field func(*Answers) string
	rules []Rule[string, []Tag]
}

// multiChoiceGroup maps each selected option to a tag independently
type multiChoiceGroup struct {
	name    string
	field   func(*Answers) []string
	options map[string]Tag
}

var tagGroups = []singleChoiceGroup{
	{
		name:  "awareness",
		field: func(a *Answers) string { return a.AIUsage },
		rules: []Rule[string, []Tag]{
			{Name: "no-ai", Match: equals("none"), Result: []Tag{"ai-none"}},
			{Name: "curious", Match: equals("never tried", "curious"), Result: []Tag{"ai-curious"}},
			{Name: "dabbled", Match: equals("dabbled"), Result: []Tag{"ai-dabbler"}},
			{Name: "regular", Match: equals("regular", "expert"), Result: []Tag{"ai-regular"}},
		},
	},
	{
		name:  "stage",
		field: func(a *Answers) string { return a.AIStage },
		rules: []Rule[string, []Tag]{
			{Name: "beginner", Match: equals("Never tried", "Curious"), Result: []Tag{"stage-beginner"}},
			{Name: "experimenting", Match: equals("Experimenting"), Result: []Tag{"stage-experimenting"}},
			{Name: "production", Match: equals("Production", "Expert"), Result: []Tag{"stage-production"}},
		},
	},
	{
		name:  "challenge",
		field: func(a *Answers) string { return a.Challenge },
		rules: []Rule[string, []Tag]{
			{Name: "time", Match: equals("time"), Result: []Tag{"blocked-time"}},
			{Name: "cost", Match: equals("cost"), Result: []Tag{"blocked-cost"}},
			{Name: "quality", Match: equals("quality"), Result: []Tag{"blocked-quality"}},
			{Name: "trust", Match: equals("trust"), Result: []Tag{"blocked-trust"}},
			{Name: "prompting", Match: equals("prompting"), Result: []Tag{"blocked-prompting"}},
			{Name: "consistency", Match: equals("consistency"), Result: []Tag{"blocked-consistency"}},
		},
	},
	{
		name:  "lead-volume",
		field: func(a *Answers) string { return a.MonthlyLeads },
		rules: []Rule[string, []Tag]{
			{Name: "starter", Match: equals("0-10"), Result: []Tag{"business-starter"}},
			{Name: "emerging", Match: equals("11-25"), Result: []Tag{"business-emerging"}},
			{Name: "growth", Match: equals("26-50"), Result: []Tag{"business-growth"}},
			{Name: "scale", Match: equals("51-100", "100+"), Result: []Tag{"business-scale", "volume-high"}},
		},
	},
	{
		name:  "audience",
		field: func(a *Answers) string { return a.TargetAudience },
		rules: []Rule[string, []Tag]{
			{Name: "clear", Match: equals("clear"), Result: []Tag{"audience-clear"}},
			{Name: "unclear", Match: equals("somewhat", "unclear"), Result: []Tag{"audience-unclear"}},
		},
	},
	{
		name:  "cta",
		field: func(a *Answers) string { return a.DesiredAction },
		rules: []Rule[string, []Tag]{
			{Name: "clear", Match: equals("clear"), Result: []Tag{"cta-clear"}},
			{Name: "unclear", Match: equals("somewhat", "unclear"), Result: []Tag{"cta-unclear"}},
		},
	},
}

var multiTagGroups = []multiChoiceGroup{
	{
		name:  "help-needed",
		field: func(a *Answers) []string { return a.HelpNeeded },
		options: map[string]Tag{
			"lead-generation": "help-leads",
			"automation":      "help-automation",
			"content":         "help-content",
			"video":           "help-video",
		},
	},
	{
		name:  "interests",
		field: func(a *Answers) []string { return a.Interests },
		options: map[string]Tag{
			"avatar":    "prefers-avatar",
			"voice":     "interest-voice",
			"chatbots":  "interest-chatbots",
			"workshops": "interest-workshops",
		},
	},
}

// DeriveTags evaluates every tag group over the raw answers. Unrecognised
// values add nothing for their group.
func DeriveTags(s *Submission) TagSet {
	tags := make(TagSet)
	for _, g := range tagGroups {
		if out, ok := FirstMatch(g.rules, utils.NormalizeAnswer(g.field(&s.Answers))); ok {
			tags.Add(out...)
		}
	}
	for _, g := range multiTagGroups {
		for _, selected := range g.field(&s.Answers) {
			if tag, ok := g.options[utils.NormalizeAnswer(selected)]; ok {
				tags.Add(tag)
			}
		}
	}
	return tags
}

var leadVolumePoints = []Rule[string, int]{
	{Name: "0-10", Match: equals("0-10"), Result: 5},
	{Name: "11-25", Match: equals("11-25"), Result: 10},
	{Name: "26-50", Match: equals("26-50"), Result: 15},
	{Name: "51-100", Match: equals("51-100"), Result: 20},
	{Name: "100+", Match: equals("100+"), Result: 25},
}

var aiStagePoints = []Rule[string, int]{
	{Name: "never-tried", Match: equals("Never tried"), Result: 0},
	{Name: "curious", Match: equals("Curious"), Result: 5},
	{Name: "experimenting", Match: equals("Experimenting"), Result: 10},
	{Name: "production", Match: equals("Production"), Result: 15},
	{Name: "expert", Match: equals("Expert"), Result: 20},
}

var helpNeededPoints = map[string]int{
	"lead-generation": 5,
	"automation":      5,
	"content":         5,
	"video":           5,
}

const (
	clarityPoints   = 10
	resourcesPoints = 10
	freeTextPoints  = 5
)

// CalculateScore sums the independent contributions and clamps once to [0,100]
func CalculateScore(s *Submission) int {
	a := &s.Answers
	total := baseScore

	total += FirstMatchOr(leadVolumePoints, utils.NormalizeAnswer(a.MonthlyLeads), 0)
	if utils.NormalizeAnswer(a.TargetAudience) == "clear" {
		total += clarityPoints
	}
	if utils.NormalizeAnswer(a.DesiredAction) == "clear" {
		total += clarityPoints
	}
	total += FirstMatchOr(aiStagePoints, utils.NormalizeAnswer(a.AIStage), 0)
	if utils.NormalizeAnswer(a.WantResources) == "yes" {
		total += resourcesPoints
	}

	seen := make(map[string]bool)
	for _, selected := range a.HelpNeeded {
		key := utils.NormalizeAnswer(selected)
		if seen[key] {
			continue
		}
		seen[key] = true
		total += helpNeededPoints[key]
	}

	if len(strings.TrimSpace(a.Website)) >= minWebsiteLength {
		total += freeTextPoints
	}
	if len(strings.TrimSpace(a.AlignmentStatement)) >= minAlignmentLength {
		total += freeTextPoints
	}

	switch {
	case total > maxScore:
		return maxScore
	case total < 0:
		return 0
	}
	return total
}

var bandLadder = []Rule[int, Band]{
	{Name: "priority", Match: func(score int) bool { return score >= 80 }, Result: BandPriority},
	{Name: "qualified", Match: func(score int) bool { return score >= 60 }, Result: BandQualified},
	{Name: "engage", Match: func(score int) bool { return score >= 30 }, Result: BandEngage},
}

// GetScoreBand maps a score onto its band; 30, 60 and 80 start a band
func GetScoreBand(score int) Band {
	return FirstMatchOr(bandLadder, score, BandNurture)
}

var variantRules = []Rule[TagSet, Variant]{
	{Name: "avatar", Match: hasAnyTag("prefers-avatar"), Result: VariantAvatar},
	{Name: "production", Match: hasAnyTag("stage-production"), Result: VariantProduction},
	{Name: "experimenting", Match: hasAnyTag("stage-experimenting"), Result: VariantExperimenter},
	{Name: "growth", Match: hasAnyTag("business-growth", "business-scale"), Result: VariantGrowth},
}

// AssignVariant picks the messaging track for a tag set
func AssignVariant(tags TagSet) Variant {
	return FirstMatchOr(variantRules, tags, VariantGeneral)
}

type templateInput struct {
	tags TagSet
	band Band
}

func onTags(match func(TagSet) bool) func(templateInput) bool {
	return func(in templateInput) bool { return match(in.tags) }
}

var smsTemplateRules = []Rule[templateInput, SMSTemplate]{
	{Name: "high-score", Match: func(in templateInput) bool { return in.band == BandPriority }, Result: TemplateHighScore},
	{Name: "time", Match: onTags(hasAnyTag("blocked-time")), Result: TemplateTime},
	{Name: "cost", Match: onTags(hasAnyTag("blocked-cost")), Result: TemplateCost},
	{Name: "experimenting-quality", Match: onTags(hasAllTags("stage-experimenting", "blocked-quality")), Result: TemplateQuality},
}

// SelectSMSTemplate picks the SMS template for a tag set and band
func SelectSMSTemplate(tags TagSet, band Band) SMSTemplate {
	return FirstMatchOr(smsTemplateRules, templateInput{tags: tags, band: band}, TemplateGeneral)
}

// EmailTemplate names the email template for a variant
func EmailTemplate(v Variant) string {
	return "email-" + string(v)
}

// Classify runs the full classifier over a submission
func Classify(s *Submission) *Classification {
	tags := DeriveTags(s)
	score := CalculateScore(s)
	band := GetScoreBand(score)
	return &Classification{
		Tags:        tags,
		Score:       score,
		Band:        band,
		Variant:     AssignVariant(tags),
		SMSTemplate: SelectSMSTemplate(tags, band),
	}
}

package core

import (
	"encoding/json"
	"sort"
	"time"
)

// Tag is a classification label attached to a submission by a rule
type Tag string

// Band is a coarse score tier derived from the numeric score
type Band string

const (
	BandNurture   Band = "NURTURE"
	BandEngage    Band = "ENGAGE"
	BandQualified Band = "QUALIFIED"
	BandPriority  Band = "PRIORITY"
)

// Variant is the messaging track assigned to a lead
type Variant string

const (
	VariantAvatar       Variant = "avatar"
	VariantProduction   Variant = "production"
	VariantExperimenter Variant = "experimenter"
	VariantGrowth       Variant = "growth"
	VariantGeneral      Variant = "general"
)

// SMSTemplate identifies the SMS template chosen for a lead
type SMSTemplate string

const (
	TemplateHighScore SMSTemplate = "Template E (High Score)"
	TemplateTime      SMSTemplate = "Template A (Time)"
	TemplateCost      SMSTemplate = "Template B (Cost)"
	TemplateQuality   SMSTemplate = "Template C (Quality)"
	TemplateGeneral   SMSTemplate = "Template D (General)"
)

// Channel is an outbound notification channel
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// DeliveryStatus is the status recorded for a notification attempt
type DeliveryStatus string

const (
	StatusQueued     DeliveryStatus = "queued"
	StatusSimulated  DeliveryStatus = "simulated"
	StatusSuppressed DeliveryStatus = "suppressed"
)

// StringList accepts either a single JSON string or a list of strings
type StringList []string

// UnmarshalJSON implements json.Unmarshaler
func (l *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*l = nil
		} else {
			*l = StringList{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// Answers holds the recognised survey answers of a submission
type Answers struct {
	AIUsage            string     `json:"aiUsage,omitempty"`
	AIStage            string     `json:"aiStage,omitempty"`
	Challenge          string     `json:"challenge,omitempty"`
	MonthlyLeads       string     `json:"monthlyLeads,omitempty"`
	TargetAudience     string     `json:"targetAudience,omitempty"`
	DesiredAction      string     `json:"desiredAction,omitempty"`
	HelpNeeded         StringList `json:"helpNeeded,omitempty"`
	Interests          StringList `json:"interests,omitempty"`
	WantResources      string     `json:"wantResources,omitempty"`
	Website            string     `json:"website,omitempty"`
	AlignmentStatement string     `json:"alignmentStatement,omitempty"`
	BusinessStage      string     `json:"businessStage,omitempty"`
	Industry           string     `json:"industry,omitempty"`
}

// Submission represents one inbound survey submission
type Submission struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Answers
}

// TagSet is a set of tags
type TagSet map[Tag]struct{}

// Add inserts tags into the set
func (s TagSet) Add(tags ...Tag) {
	for _, t := range tags {
		s[t] = struct{}{}
	}
}

// Has reports whether the tag is present
func (s TagSet) Has(tag Tag) bool {
	_, ok := s[tag]
	return ok
}

// Sorted returns the tags in lexical order
func (s TagSet) Sorted() []Tag {
	out := make([]Tag, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Classification is the derived, immutable result of classifying a submission
type Classification struct {
	Tags        TagSet
	Score       int
	Band        Band
	Variant     Variant
	SMSTemplate SMSTemplate
}

// EntryRecord is the persisted per-contact raffle entry
type EntryRecord struct {
	ID           string
	Email        string
	Name         string
	Phone        string
	Responses    Answers
	Tags         []Tag
	Score        int
	Band         Band
	Variant      Variant
	EntriesCount int
	SMSStatus    DeliveryStatus
	EmailStatus  DeliveryStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NotificationLogEntry is one append-only audit row for an outbound message
type NotificationLogEntry struct {
	ID        string
	EntryID   string
	Channel   Channel
	Template  string
	Status    DeliveryStatus
	Metadata  map[string]string
	CreatedAt time.Time
}

// Package xapi renders activity events as xAPI statements on per-consumer
// log channels, where the log shipping pipeline picks them up.
package xapi

// LanguageMap maps RFC 5646 language tags to display strings.
type LanguageMap map[string]string

// Account identifies the actor on the consumer site.
type Account struct {
	HomePage string `json:"homePage"`
	Name     string `json:"name"`
}

// Agent is the statement actor.
type Agent struct {
	ObjectType string  `json:"objectType"`
	Account    Account `json:"account"`
}

// Verb describes the action taken.
type Verb struct {
	ID      string      `json:"id"`
	Display LanguageMap `json:"display"`
}

// ActivityDefinition describes an activity object.
type ActivityDefinition struct {
	Name       LanguageMap    `json:"name,omitempty"`
	Type       string         `json:"type,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Activity is the statement object or a context activity.
type Activity struct {
	ID         string              `json:"id"`
	ObjectType string              `json:"objectType"`
	Definition *ActivityDefinition `json:"definition,omitempty"`
}

// ContextActivities groups the activities the statement happened within.
type ContextActivities struct {
	Parent []Activity `json:"parent,omitempty"`
}

// Context carries the statement context.
type Context struct {
	ContextActivities *ContextActivities `json:"contextActivities,omitempty"`
	Extensions        map[string]any     `json:"extensions,omitempty"`
}

// Statement is one xAPI statement.
type Statement struct {
	ID        string   `json:"id"`
	Actor     Agent    `json:"actor"`
	Verb      Verb     `json:"verb"`
	Object    Activity `json:"object"`
	Context   *Context `json:"context,omitempty"`
	Timestamp string   `json:"timestamp"`
}

const (
	VerbViewed  = "http://id.tincanapi.com/verb/viewed"
	VerbCreated = "https://w3id.org/xapi/dod-isd/verbs/created"
	VerbUpdated = "https://w3id.org/xapi/dod-isd/verbs/updated"

	ActivityTypeForum  = "http://id.tincanapi.com/activitytype/community-site"
	ActivityTypeTopic  = "http://id.tincanapi.com/activitytype/discussion"
	ActivityTypePost   = "https://w3id.org/xapi/acrossx/activities/message"
	ActivityTypeCourse = "http://adlnet.gov/expapi/activities/course"

	ExtensionPage       = "http://www.risc-inc.com/annotator/extensions/page"
	ExtensionTotalItems = "https://w3id.org/xapi/acrossx/extensions/total-items"
	ExtensionTotalPages = "https://w3id.org/xapi/acrossx/extensions/total-pages"
)

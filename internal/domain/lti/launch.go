package lti

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var edxContextIDPattern = regexp.MustCompile(`^course-v1:[^+]+\+[^+]+\+[^+]+$`)

// LaunchRequest wraps the form of a basic LTI launch POST. It stays invalid
// until a Verifier has checked its parameters and OAuth signature.
type LaunchRequest struct {
	method   string
	url      string
	params   url.Values
	valid    bool
	consumer *Consumer
}

// NewLaunchRequest captures the method, full URL and form body of an
// incoming launch. The URL must be the one the consumer signed, so callers
// are expected to rebuild it from the external scheme and host.
func NewLaunchRequest(method, rawURL string, form url.Values) *LaunchRequest {
	return &LaunchRequest{
		method: method,
		url:    rawURL,
		params: form,
	}
}

// ValidateParams checks the form against the LTI 1.0 parameter set:
// every required parameter must be present and no unknown name is allowed.
func (l *LaunchRequest) ValidateParams() error {
	for name := range l.params {
		if !IsValidLaunchParam(name) {
			return fmt.Errorf("unknown launch parameter %q", name)
		}
	}
	for _, name := range RequiredLaunchParams() {
		if l.params.Get(name) == "" {
			return fmt.Errorf("missing launch parameter %q", name)
		}
	}
	return nil
}

// IsValid reports whether the launch passed verification.
func (l *LaunchRequest) IsValid() bool {
	return l.valid
}

// GetParam returns a raw parameter value, "" when absent.
func (l *LaunchRequest) GetParam(name string) string {
	return l.params.Get(name)
}

// GetParamDefault returns the parameter value or the given default.
func (l *LaunchRequest) GetParamDefault(name, def string) string {
	if v := l.params.Get(name); v != "" {
		return v
	}
	return def
}

// GetListParam returns a comma separated parameter as trimmed elements.
func (l *LaunchRequest) GetListParam(name string) []string {
	return SplitListParam(l.params.Get(name))
}

// Roles returns the declared LTI roles, normalized to their bare
// lowercase names. Full urn:lti:role:ims/lis/Instructor style values are
// reduced to their last path segment.
func (l *LaunchRequest) Roles() []string {
	raw := l.GetListParam("roles")
	roles := make([]string, 0, len(raw))
	for _, role := range raw {
		roles = append(roles, NormalizeRole(role))
	}
	return roles
}

// HasRole reports whether the launch declares the given role,
// case-insensitively.
func (l *LaunchRequest) HasRole(role string) bool {
	want := strings.ToLower(role)
	for _, r := range l.Roles() {
		if r == want {
			return true
		}
	}
	return false
}

func (l *LaunchRequest) ContextID() string {
	return l.params.Get("context_id")
}

func (l *LaunchRequest) ContextTitle() string {
	return l.params.Get("context_title")
}

func (l *LaunchRequest) ResourceLinkID() string {
	return l.params.Get("resource_link_id")
}

func (l *LaunchRequest) Locale() string {
	return l.params.Get("launch_presentation_locale")
}

// IsEdxFormat recognizes context ids of the course-v1:{school}+{course}+{run}
// shape produced by Open edX consumers.
func (l *LaunchRequest) IsEdxFormat() bool {
	return edxContextIDPattern.MatchString(l.ContextID())
}

// GetConsumer returns the consumer resolved during verification, nil
// before a successful Verify.
func (l *LaunchRequest) GetConsumer() *Consumer {
	return l.consumer
}

// Params exposes a copy of the raw form, mainly for signing in tests.
func (l *LaunchRequest) Params() url.Values {
	out := make(url.Values, len(l.params))
	for k, v := range l.params {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func (l *LaunchRequest) markVerified(consumer *Consumer) {
	l.valid = true
	l.consumer = consumer
}

// NormalizeRole lowercases a role and strips urn-style prefixes, keeping
// only the final path segment.
func NormalizeRole(role string) string {
	role = strings.TrimSpace(role)
	if idx := strings.LastIndex(role, "/"); idx >= 0 {
		role = role[idx+1:]
	}
	return strings.ToLower(role)
}

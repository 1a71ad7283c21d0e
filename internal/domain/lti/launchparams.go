package lti

import "strings"

// Parameter families of the LTI 1.0 basic launch request. Anything outside
// these lists (other than the custom_ and ext_ open namespaces) makes the
// whole launch invalid.

var launchParamsRequired = []string{
	"lti_message_type",
	"lti_version",
	"resource_link_id",
}

var launchParamsRecommended = []string{
	"resource_link_description",
	"resource_link_title",
	"user_id",
	"user_image",
	"roles",
	"lis_person_name_given",
	"lis_person_name_family",
	"lis_person_name_full",
	"lis_person_contact_email_primary",
	"role_scope_mentor",
	"context_id",
	"context_label",
	"context_title",
	"context_type",
	"launch_presentation_locale",
	"launch_presentation_document_target",
	"launch_presentation_css_url",
	"launch_presentation_width",
	"launch_presentation_height",
	"launch_presentation_return_url",
	"tool_consumer_info_product_family_code",
	"tool_consumer_info_version",
	"tool_consumer_instance_guid",
	"tool_consumer_instance_name",
	"tool_consumer_instance_description",
	"tool_consumer_instance_url",
	"tool_consumer_instance_contact_email",
}

var launchParamsLIS = []string{
	"lis_course_section_sourcedid",
	"lis_course_offering_sourcedid",
	"lis_outcome_service_url",
	"lis_person_sourcedid",
	"lis_result_sourcedid",
}

var launchParamsReturnURL = []string{
	"lti_errormsg",
	"lti_errorlog",
	"lti_msg",
	"lti_log",
}

var launchParamsOAuth = []string{
	"oauth_consumer_key",
	"oauth_signature_method",
	"oauth_timestamp",
	"oauth_nonce",
	"oauth_version",
	"oauth_signature",
	"oauth_callback",
	"oauth_token",
}

// Parameters whose value is a comma separated list.
var launchParamsIsList = map[string]bool{
	"roles":             true,
	"role_scope_mentor": true,
	"context_type":      true,
}

var knownLaunchParams = buildKnownParams()

func buildKnownParams() map[string]bool {
	known := make(map[string]bool)
	for _, family := range [][]string{
		launchParamsRequired,
		launchParamsRecommended,
		launchParamsLIS,
		launchParamsReturnURL,
		launchParamsOAuth,
	} {
		for _, name := range family {
			known[name] = true
		}
	}
	return known
}

// IsValidLaunchParam reports whether a form field name is part of the LTI
// launch parameter set. The custom_ and ext_ prefixes are open namespaces.
func IsValidLaunchParam(name string) bool {
	if strings.HasPrefix(name, "custom_") || strings.HasPrefix(name, "ext_") {
		return true
	}
	return knownLaunchParams[name]
}

// IsListLaunchParam reports whether the parameter value is a comma
// separated list.
func IsListLaunchParam(name string) bool {
	return launchParamsIsList[name]
}

// RequiredLaunchParams returns the names a basic launch request must carry.
func RequiredLaunchParams() []string {
	return append([]string(nil), launchParamsRequired...)
}

// SplitListParam turns a comma separated parameter value into its trimmed
// elements, dropping empties.
func SplitListParam(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

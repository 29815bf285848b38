package domain

// transitions is the full rule set: kind → action → current status → next
// status. An action absent for a kind is invalid outright; a present action
// with no row for the current status is an invalid transition.
var transitions = map[EntityKind]map[Action]map[string]string{
	KindFranchisor: {
		ActionApprove:    {"pending": "active"},
		ActionSuspend:    {"active": "suspended"},
		ActionReactivate: {"suspended": "active"},
	},
	KindSchool: {
		ActionSuspend:    {"active": "suspended"},
		ActionReactivate: {"suspended": "active"},
	},
	KindSubscription: {
		ActionActivate: {"pending": "active", "inactive": "active"},
		ActionCancel:   {"active": "cancelled", "pending": "cancelled"},
	},
}

// reasonCategories is the closed per-kind taxonomy. Every transition must
// name one of these; free-form text goes in reason_details.
var reasonCategories = map[EntityKind]map[string]struct{}{
	KindFranchisor: {
		"onboarding_complete":  {},
		"payment_default":      {},
		"contract_breach":      {},
		"payments_regularized": {},
		"administrative":       {},
		"other":                {},
	},
	KindSchool: {
		"payment_default":      {},
		"contract_breach":      {},
		"operational_issue":    {},
		"payments_regularized": {},
		"administrative":       {},
		"other":                {},
	},
	KindSubscription: {
		"requested_by_school": {},
		"payment_default":     {},
		"plan_change":         {},
		"renegotiation":       {},
		"administrative":      {},
		"other":               {},
	},
}

func KnownKind(kind EntityKind) bool {
	_, ok := transitions[kind]
	return ok
}

func KnownAction(kind EntityKind, action Action) bool {
	rules, ok := transitions[kind]
	if !ok {
		return false
	}
	_, ok = rules[action]
	return ok
}

// Target resolves the next status for (kind, action, from). ok is false when
// the action is not legal from that status.
func Target(kind EntityKind, action Action, from string) (string, bool) {
	rules, ok := transitions[kind]
	if !ok {
		return "", false
	}
	byStatus, ok := rules[action]
	if !ok {
		return "", false
	}
	to, ok := byStatus[from]
	return to, ok
}

func ValidReason(kind EntityKind, category string) bool {
	set, ok := reasonCategories[kind]
	if !ok {
		return false
	}
	_, ok = set[category]
	return ok
}

// ReasonCategories lists the allowed categories for a kind, for API docs and
// validation messages. Order is not significant.
func ReasonCategories(kind EntityKind) []string {
	set := reasonCategories[kind]
	out := make([]string, 0, len(set))
	for category := range set {
		out = append(out, category)
	}
	return out
}

// RequiresConfirmation reports whether a kind's transitions need an explicit
// caller acknowledgement on top of the justification.
func RequiresConfirmation(kind EntityKind) bool {
	return kind == KindSubscription
}

package consultations

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Decision is the Nation's resolution of a consultation. The zero value means
// no decision has been recorded and is treated as DecisionPending.
type Decision string

const (
	DecisionNone        Decision = ""
	DecisionPending     Decision = "pending"
	DecisionEndorse     Decision = "endorse_no_concerns"
	DecisionConditional Decision = "conditional_endorsement"
	DecisionNotEndorsed Decision = "not_endorsed"
)

// legacyUnableToEndorse is the historical label for DecisionNotEndorsed.
const legacyUnableToEndorse = "unable_to_endorse"

var labels = map[Decision]string{
	DecisionNone:        "No Decision",
	DecisionPending:     "Pending",
	DecisionEndorse:     "Endorse with No Concerns",
	DecisionConditional: "Conditional Endorsement",
	DecisionNotEndorsed: "Not Endorsed",
}

// Decisions returns the selectable decision values in display order.
func Decisions() []Decision {
	return []Decision{
		DecisionPending,
		DecisionEndorse,
		DecisionConditional,
		DecisionNotEndorsed,
	}
}

// ParseDecision validates s against the closed decision set. The empty string
// parses to DecisionNone and "unable_to_endorse" to DecisionNotEndorsed.
func ParseDecision(s string) (Decision, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	if s == legacyUnableToEndorse {
		return DecisionNotEndorsed, nil
	}

	d := Decision(s)
	if _, ok := labels[d]; !ok {
		return DecisionNone, fmt.Errorf("%w: %q", ErrInvalidDecision, s)
	}
	return d, nil
}

// Resolved reports whether the decision is set and not pending.
func (d Decision) Resolved() bool {
	return d != DecisionNone && d != DecisionPending
}

// Label returns the human-readable name of the decision.
func (d Decision) Label() string {
	if l, ok := labels[d]; ok {
		return l
	}
	return string(d)
}

func (d Decision) MarshalJSON() ([]byte, error) {
	if d == DecisionNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

func (d *Decision) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = DecisionNone
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDecision, data)
	}

	parsed, err := ParseDecision(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner. NULL scans to DecisionNone.
func (d *Decision) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = DecisionNone
		return nil
	case string:
		parsed, err := ParseDecision(v)
		*d = parsed
		return err
	case []byte:
		parsed, err := ParseDecision(string(v))
		*d = parsed
		return err
	default:
		return fmt.Errorf("scan decision: unsupported type %T", src)
	}
}

// Value implements driver.Valuer. DecisionNone is stored as NULL.
func (d Decision) Value() (driver.Value, error) {
	if d == DecisionNone {
		return nil, nil
	}
	return string(d), nil
}

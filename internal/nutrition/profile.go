package nutrition

import (
	"fmt"
	"strings"
)

// UserType selects the scoring weights, targets and slot layout for a user.
type UserType int

const (
	Regular UserType = iota
	Diabetes
	PCOS
)

var userTypeNames = [...]string{
	Regular:  "regular",
	Diabetes: "diabetes",
	PCOS:     "pcos",
}

// UserTypes lists every user type in table order.
var UserTypes = []UserType{Regular, Diabetes, PCOS}

func (t UserType) String() string {
	if t < 0 || int(t) >= len(userTypeNames) {
		return fmt.Sprintf("UserType(%d)", int(t))
	}
	return userTypeNames[t]
}

func (t UserType) Valid() bool {
	return t >= Regular && t <= PCOS
}

// ConditionSensitive reports whether glycemic scoring and the split slot
// layout apply.
func (t UserType) ConditionSensitive() bool {
	return t == Diabetes || t == PCOS
}

func (t UserType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid user type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *UserType) UnmarshalText(b []byte) error {
	parsed, err := ParseUserType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseUserType parses the lower-case name of a user type.
func ParseUserType(s string) (UserType, error) {
	for i, name := range userTypeNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return UserType(i), nil
		}
	}
	return Regular, fmt.Errorf("unknown user type %q", s)
}

// ClassifyConditions maps a user's health conditions to a user type.
// Diabetes takes precedence over PCOS.
func ClassifyConditions(conditions []string) UserType {
	has := func(name string) bool {
		for _, c := range conditions {
			if c == name {
				return true
			}
		}
		return false
	}
	switch {
	case has("Diabetes"):
		return Diabetes
	case has("PCOS"):
		return PCOS
	default:
		return Regular
	}
}

// Weights are the sub-score weights used by Score.
type Weights struct {
	Calorie  float64
	Macro    float64
	CarbDist float64
	GIGL     float64
}

func (w Weights) Sum() float64 {
	return w.Calorie + w.Macro + w.CarbDist + w.GIGL
}

var weightTable = [...]Weights{
	Regular:  {Calorie: 0.4, Macro: 0.6},
	Diabetes: {Calorie: 0.1, Macro: 0.2, CarbDist: 0.3, GIGL: 0.4},
	PCOS:     {Calorie: 0.1, Macro: 0.3, CarbDist: 0.3, GIGL: 0.3},
}

// Weights returns the scoring weights for t. Unknown types score as regular.
func (t UserType) Weights() Weights {
	if !t.Valid() {
		return weightTable[Regular]
	}
	return weightTable[t]
}

// Targets are the condition-dependent daily targets.
type Targets struct {
	Sugar float64
	GI    float64
	GL    float64
}

var targetTable = [...]Targets{
	Regular:  {Sugar: 15, GI: 55, GL: 20},
	Diabetes: {Sugar: 5, GI: 40, GL: 10},
	PCOS:     {Sugar: 5, GI: 45, GL: 15},
}

func (t UserType) Targets() Targets {
	if !t.Valid() {
		return targetTable[Regular]
	}
	return targetTable[t]
}

// Macros are daily macro targets in grams.
type Macros struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fats"`
}

// Scale returns m multiplied by ratio.
func (m Macros) Scale(ratio float64) Macros {
	return Macros{Protein: m.Protein * ratio, Carbs: m.Carbs * ratio, Fat: m.Fat * ratio}
}

// Profile is the read-only nutrition target a plan is generated against.
type Profile struct {
	Type           UserType
	TargetCalories float64
	TargetMacros   Macros
	Targets        Targets
}

// NewProfile builds a profile with the targets for t filled in.
func NewProfile(t UserType, goalCalories float64, macros Macros) Profile {
	return Profile{
		Type:           t,
		TargetCalories: goalCalories,
		TargetMacros:   macros,
		Targets:        t.Targets(),
	}
}

// Summary is the profile view returned to API clients.
type Summary struct {
	Type         UserType `json:"type"`
	GoalCalories float64  `json:"goalCalories"`
	Macros       Macros   `json:"macros"`
}

func (p Profile) Summary() Summary {
	return Summary{Type: p.Type, GoalCalories: p.TargetCalories, Macros: p.TargetMacros}
}

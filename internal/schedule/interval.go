package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/2beens/cyclingcoach/pkg"

	"github.com/google/uuid"
)

type Type string

const (
	TypeCycling Type = "Cycling"
	TypeWork    Type = "Work"
	TypeOther   Type = "Other"
)

var AllTypes = []Type{TypeCycling, TypeWork, TypeOther}

func (t Type) IsValid() bool {
	switch t {
	case TypeCycling, TypeWork, TypeOther:
		return true
	}
	return false
}

// ParseType returns an error listing the valid values when s is not one of them.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid type '%s'. Must be one of %s", s, validTypesList())
	}
	return t, nil
}

// ParseTypesCSV parses a comma separated filter like "Cycling,Work". Blank
// entries are skipped; an empty result means no filter.
func ParseTypesCSV(csv string) ([]Type, error) {
	var types []Type
	for _, part := range pkg.SplitCSV(csv) {
		t, err := ParseType(part)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

func validTypesList() string {
	names := make([]string, len(AllTypes))
	for i, t := range AllTypes {
		names[i] = string(t)
	}
	return "[" + strings.Join(names, ", ") + "]"
}

type Interval struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Type        Type       `json:"type"`
	StartAt     time.Time  `json:"start_at"`
	EndAt       time.Time  `json:"end_at"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

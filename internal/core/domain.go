package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	SortProgressDesc SortKey = "progress-desc"
	SortTargetDesc   SortKey = "target-desc"
	SortDateDesc     SortKey = "date-desc"

	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	// FilterAll selects every category.
	FilterAll = "all"

	// TimestampLayout matches the millisecond ISO-8601 form goals are stored with.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

type (
	SortKey string
	Theme   string

	// Goal is a single savings goal as persisted.
	Goal struct {
		ID            int     `json:"id"`
		Name          string  `json:"name"`
		TargetAmount  float64 `json:"targetAmount"`
		CurrentAmount float64 `json:"currentAmount"`
		Category      string  `json:"category"`
		Notes         string  `json:"notes"`
		CreatedAt     string  `json:"createdAt"`
		Background    string  `json:"background,omitempty"`
	}

	// GoalInput carries raw form values for NewGoal.
	GoalInput struct {
		Name     string
		Target   string
		Current  string
		Category string
		Notes    string
	}
)

var (
	ErrEmptyName     = errors.New("empty goal name")
	ErrInvalidTarget = errors.New("invalid target amount")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrUnknownCat    = errors.New("unknown category")
)

// ValidationError is a rejection whose Message can be shown to the user as is.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid builds a ValidationError.
func Invalid(message string, err error) *ValidationError {
	return &ValidationError{Message: message, Err: err}
}

// IsValid reports whether k is one of the known sort keys.
func (k SortKey) IsValid() bool {
	switch k {
	case SortProgressDesc, SortTargetDesc, SortDateDesc:
		return true
	}
	return false
}

// IsValid reports whether t is light or dark.
func (t Theme) IsValid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Toggle flips between light and dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// NewGoal validates in and builds a goal stamped with now. The current amount
// falls back to zero when blank or unparseable and is clamped to [0, target].
func NewGoal(id int, in GoalInput, catalog Catalog, now time.Time) (Goal, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Goal{}, Invalid("Please enter a goal name", ErrEmptyName)
	}

	target, err := ParseAmount(in.Target)
	if err != nil || target.InexactFloat64() <= 0 {
		return Goal{}, Invalid("Target must be greater than 0", ErrInvalidTarget)
	}

	current, err := ParseAmount(in.Current)
	if err != nil {
		current = decimal.Zero
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = catalog.DefaultCategory()
	}
	if !catalog.HasCategory(category) {
		return Goal{}, Invalid("Please choose a category", fmt.Errorf("%w: %q", ErrUnknownCat, category))
	}

	return Goal{
		ID:            id,
		Name:          name,
		TargetAmount:  target.InexactFloat64(),
		CurrentAmount: Clamp(current, target).InexactFloat64(),
		Category:      category,
		Notes:         strings.TrimSpace(in.Notes),
		CreatedAt:     now.UTC().Format(TimestampLayout),
	}, nil
}

// Deposit adds amount to the goal's current amount, capped at the target.
// Amounts above MaxAmount are rejected.
func (g *Goal) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() || amount.GreaterThan(MaxAmount) {
		return Invalid("Please enter a valid amount", ErrInvalidAmount)
	}
	target := decimal.NewFromFloat(g.TargetAmount)
	sum := decimal.NewFromFloat(g.CurrentAmount).Add(amount)
	g.CurrentAmount = Clamp(sum, target).InexactFloat64()
	return nil
}

// Created parses CreatedAt; an unparseable value yields the zero time.
func (g Goal) Created() time.Time {
	t, err := time.Parse(time.RFC3339Nano, g.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// IsComplete reports whether the goal has reached its target.
func (g Goal) IsComplete() bool {
	return Progress(g) >= 100
}

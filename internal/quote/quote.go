package quote

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type CoverageType string

const (
	CoverageCar    CoverageType = "CAR"
	CoverageHome   CoverageType = "HOME"
	CoverageHealth CoverageType = "HEALTH"
	CoverageLife   CoverageType = "LIFE"
	CoverageTravel CoverageType = "TRAVEL"
)

var coverageTypes = []CoverageType{
	CoverageCar,
	CoverageHome,
	CoverageHealth,
	CoverageLife,
	CoverageTravel,
}

// CoverageTypes returns every known coverage type.
func CoverageTypes() []CoverageType {
	out := make([]CoverageType, len(coverageTypes))
	copy(out, coverageTypes)
	return out
}

func (c CoverageType) Valid() bool {
	for _, ct := range coverageTypes {
		if c == ct {
			return true
		}
	}
	return false
}

// ParseCoverageType accepts any letter case.
func ParseCoverageType(s string) (CoverageType, error) {
	c := CoverageType(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%q: %w", s, ErrInvalidCoverageType)
	}
	return c, nil
}

type Provider struct {
	ID        int64      `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// Quote is a persisted quote joined with its provider's name.
// ProviderDeleted reports whether the owning provider has been soft-deleted.
type Quote struct {
	ID              int64           `db:"id"`
	CoverageType    CoverageType    `db:"coverage_type"`
	Price           decimal.Decimal `db:"price"`
	ProviderID      int64           `db:"provider_id"`
	ProviderName    string          `db:"provider_name"`
	ProviderDeleted bool            `db:"provider_deleted"`
	CreatedAt       time.Time       `db:"created_at"`
	DeletedAt       *time.Time      `db:"deleted_at"`
}

// View is the denormalized shape returned to callers.
type View struct {
	CoverageType CoverageType    `json:"coverageType"`
	Price        decimal.Decimal `json:"price"`
	ProviderName string          `json:"providerName"`
}

func (q Quote) View() View {
	return View{
		CoverageType: q.CoverageType,
		Price:        q.Price,
		ProviderName: q.ProviderName,
	}
}

// Views maps quotes to views, preserving order. The result is never nil.
func Views(quotes []Quote) []View {
	out := make([]View, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, q.View())
	}
	return out
}

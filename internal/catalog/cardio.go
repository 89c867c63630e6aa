package catalog

import (
	"strings"

	"github.com/claude/wodcoach/internal/models"
)

// CardioKind is the pace family of a cardio movement.
type CardioKind string

const (
	CardioRunning CardioKind = "running"
	CardioRowing  CardioKind = "rowing"
	CardioOther   CardioKind = "other"
)

var runningNames = map[string]bool{
	"run":           true,
	"running":       true,
	"shuttle run":   true,
	"treadmill run": true,
}

var rowingNames = map[string]bool{
	"row":     true,
	"rowing":  true,
	"erg row": true,
}

// KindOf classifies a movement by canonical name. Non-cardio movements and
// cardio machines without a pace benchmark are CardioOther.
func KindOf(m models.Movement) CardioKind {
	if m.Category != models.CategoryCardio {
		return CardioOther
	}
	n := strings.ToLower(strings.TrimSpace(m.CanonicalName))
	switch {
	case runningNames[n]:
		return CardioRunning
	case rowingNames[n]:
		return CardioRowing
	default:
		return CardioOther
	}
}

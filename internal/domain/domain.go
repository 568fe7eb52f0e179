package domain

// Slot statuses. A slot with pending challenges stays AVAILABLE; "pending" is
// purely a rendering nuance.
const (
	SlotUnavailable = "UNAVAILABLE"
	SlotAvailable   = "AVAILABLE"
	SlotConfirmed   = "CONFIRMED"
)

// Panel types.
const (
	PanelScheduled = "SCHEDULED"
	PanelInstant   = "INSTANT"
)

// InstantLabel is the sentinel time label carried by INSTANT panels.
const InstantLabel = "INSTANT"

// ScheduledLabels are the fixed evening slots offered by SCHEDULED panels,
// in board order.
var ScheduledLabels = []string{
	"20:00", "20:30", "21:00", "21:30", "22:00", "22:30", "23:00",
}

// Team member roles.
const (
	RoleManager = "manager"
	RoleCaptain = "captain"
	RolePlayer  = "player"
)

// ValidPanelType reports whether t is a known panel type.
func ValidPanelType(t string) bool {
	return t == PanelScheduled || t == PanelInstant
}

// ValidLabel reports whether label is a legal time label for the given panel type.
func ValidLabel(panelType, label string) bool {
	if panelType == PanelInstant {
		return label == InstantLabel
	}
	for _, l := range ScheduledLabels {
		if l == label {
			return true
		}
	}
	return false
}

// LabelsFor returns the full ordered label set for a panel type.
func LabelsFor(panelType string) []string {
	if panelType == PanelInstant {
		return []string{InstantLabel}
	}
	out := make([]string, len(ScheduledLabels))
	copy(out, ScheduledLabels)
	return out
}

package domain

import "errors"

// Domain errors.
var (
	ErrPanelNotFound      = errors.New("panneau de recherche non trouvé")
	ErrPanelExists        = errors.New("cette équipe a déjà un panneau de ce type")
	ErrSlotNotFound       = errors.New("créneau non trouvé")
	ErrSlotTaken          = errors.New("ce créneau est déjà confirmé")
	ErrSlotUnavailable    = errors.New("ce créneau n'est pas proposé")
	ErrSlotHasChallenges  = errors.New("ce créneau a des défis en attente")
	ErrChallengeNotFound  = errors.New("ce défi n'est plus valable")
	ErrDuplicateChallenge = errors.New("ton équipe a déjà défié ce créneau")
	ErrDoubleBooked       = errors.New("ton équipe a déjà un match confirmé à cette heure")
	ErrOwnPanel           = errors.New("impossible de défier le panneau de sa propre équipe")
	ErrLeagueFiltered     = errors.New("ce panneau est réservé à d'autres ligues")
	ErrNoConfirmedMatch   = errors.New("aucun match confirmé sur ce créneau")
	ErrTeamNotFound       = errors.New("équipe non trouvée")
	ErrNotTeamStaff       = errors.New("seul le manager ou un capitaine peut effectuer cette action")
	ErrNotMatchParty      = errors.New("seules les deux équipes du match peuvent l'annuler")
	ErrNotifyFailed       = errors.New("impossible de prévenir le manager adverse")
)

package services

import "errors"

// Wager error taxonomy. Every rejection is detected before any balance
// mutation; handlers surface the message verbatim.
var (
	ErrInvalidWager        = errors.New("wager is below the minimum")
	ErrInsufficientFunds   = errors.New("insufficient PULP balance")
	ErrWindowClosed        = errors.New("betting window is not open")
	ErrInvalidPicks        = errors.New("picks must be three distinct known players")
	ErrDuplicatePrediction = errors.New("a pending prediction already exists for this window")
	ErrInvalidOpponent     = errors.New("challenged player must rank above you in the season standings")
	ErrAlreadyOwned        = errors.New("an unused instance of this advantage is already held")
	ErrNotFound            = errors.New("not found")
	ErrAlreadySettled      = errors.New("already settled")
	ErrInvalidTransition   = errors.New("illegal betting window transition")
	ErrRoundNotFinalized   = errors.New("round scores are not finalized")
	ErrRoundFinalized      = errors.New("round is already finalized")
)

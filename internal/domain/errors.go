package domain

import "errors"

var (
	// ErrSessionNotFound is returned for an unknown or already-ended game code.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrAlreadyStarted is returned when starting a session that has left the lobby.
	ErrAlreadyStarted = errors.New("game already started")
	// ErrNotInProgress is returned when an answer arrives before the first question.
	ErrNotInProgress = errors.New("game not in progress")
	// ErrNoMoreQuestions is returned when advancing past the final question.
	ErrNoMoreQuestions = errors.New("no more questions")
	// ErrParticipantNotFound is returned when a player tries to act before joining.
	ErrParticipantNotFound = errors.New("participant not found in session")
	// ErrAlreadyAnswered is returned for a second submission on the same question.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrTooLate is returned when the question's time limit has elapsed.
	ErrTooLate = errors.New("time limit elapsed")
	// ErrSetNotFound indicates the question set could not be loaded.
	ErrSetNotFound = errors.New("question set not found")
)

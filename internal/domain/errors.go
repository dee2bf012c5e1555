package domain

import "errors"

// Backend errors
var (
	ErrBackendUnavailable  = errors.New("backend unavailable")
	ErrUniquenessViolation = errors.New("uniqueness violation")
	ErrNotFound            = errors.New("not found")
)

// Circle errors
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidStatus     = errors.New("invalid friend status")
	ErrInvalidTier       = errors.New("invalid tier")
	ErrAlreadyInCircle   = errors.New("already in circle")
	ErrSelfRelationship  = errors.New("cannot add yourself to your circle")
	ErrEmptyBatch        = errors.New("no relationships given")
	ErrInvalidImport     = errors.New("invalid import payload")
)

// Messaging and feed errors
var (
	ErrInvalidConversation = errors.New("invalid conversation")
	ErrInvalidMessage      = errors.New("invalid message")
	ErrInvalidPost         = errors.New("invalid post")
	ErrInvalidReaction     = errors.New("invalid reaction")
)

// Profile errors
var ErrInvalidProfile = errors.New("invalid profile")

// Pioneer errors
var (
	ErrInvalidCreditType  = errors.New("invalid credit type")
	ErrSourceRequired     = errors.New("source id required for friend_joined")
	ErrSelfInvite         = errors.New("cannot accept your own invite")
	ErrInvalidSource      = errors.New("invalid source id")
	ErrCreditNotClaimable = errors.New("credit is granted by the server, not claimed")
)

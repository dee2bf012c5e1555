package circle

import (
	"fmt"
	"time"

	"realones/internal/domain"
	"realones/internal/models"
)

// edges lists every permitted status change. Removal is a hard delete and is not
// modelled as a status.
var edges = map[domain.FriendStatus]map[domain.FriendStatus]bool{
	domain.FriendPending:    {domain.FriendActive: true, domain.FriendArchived: true},
	domain.FriendImportPool: {domain.FriendActive: true, domain.FriendArchived: true},
	domain.FriendActive:     {domain.FriendArchived: true},
	domain.FriendArchived:   {domain.FriendActive: true},
}

func CanTransition(from, to domain.FriendStatus) bool {
	return edges[from][to]
}

// Transition returns a copy of f moved to status to. ArchivedAt is set when the
// relationship is archived and cleared otherwise. f itself is left untouched.
func Transition(f models.Friend, to domain.FriendStatus, now time.Time) (models.Friend, error) {
	if !to.Valid() {
		return f, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, to)
	}
	if !CanTransition(f.Status, to) {
		return f, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, f.Status, to)
	}
	out := f
	out.Status = to
	if to == domain.FriendArchived {
		t := now
		out.ArchivedAt = &t
	} else {
		out.ArchivedAt = nil
	}
	out.UpdatedAt = now
	return out, nil
}

// BulkTransition applies Transition to every relationship. If any single change
// is invalid nothing is returned, so a batch is applied entirely or not at all.
func BulkTransition(friends []models.Friend, to domain.FriendStatus, now time.Time) ([]models.Friend, error) {
	if len(friends) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	out := make([]models.Friend, 0, len(friends))
	for _, f := range friends {
		next, err := Transition(f, to, now)
		if err != nil {
			return nil, fmt.Errorf("relationship %s: %w", f.ID, err)
		}
		out = append(out, next)
	}
	return out, nil
}

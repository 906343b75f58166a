package services

import (
	"github.com/pushp314/messenger-backend/internal/models"
	"github.com/pushp314/messenger-backend/pkg/utils"
)

// Participants is a classified participant set. IDs always starts with the
// requesting user.
type Participants struct {
	IDs     []string
	IsGroup bool
}

// Classify turns a requested target list into a participant set.
// Duplicates and the requester are dropped from targets first: nobody left
// means a self chat, one other user means a direct chat, more means a group.
func Classify(selfID string, targets []string) Participants {
	others := make([]string, 0, len(targets))
	for _, id := range utils.DedupeIDs(targets) {
		if id != selfID {
			others = append(others, id)
		}
	}
	return Participants{
		IDs:     append([]string{selfID}, others...),
		IsGroup: len(others) > 1,
	}
}

func (p Participants) IsSelf() bool {
	return len(p.IDs) == 1
}

func (p Participants) Key() string {
	return models.ParticipantKey(p.IDs)
}

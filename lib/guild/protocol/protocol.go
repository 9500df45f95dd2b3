// Package protocol holds the messages exchanged with receptionist clients and worker side
// collaborators. They are transport agnostic; lib/guild/rpc carries them over grpc.
package protocol

import (
	"fmt"

	"gfx.cafe/gfx/guild/lib/guild/resources"
)

type Empty struct{}

type Acknowledgement struct {
	Ok bool `json:"ok"`
}

type RequestDetails struct {
	// Requirements may be omitted, in which case any mercenary will do.
	Requirements *resources.Descriptor `json:"requirements,omitempty"`
}

// Descriptor validates the requirements at the transport boundary.
func (T *RequestDetails) Descriptor() (resources.Descriptor, error) {
	if T == nil || T.Requirements == nil {
		return resources.Any, nil
	}
	if err := T.Requirements.Validate(); err != nil {
		return resources.Descriptor{}, fmt.Errorf("request details: %w", err)
	}
	return *T.Requirements, nil
}

type RequestAcknowledgement struct {
	Success    bool   `json:"success"`
	Identifier string `json:"identifier"`
}

// GuildQuest is handed to the mercenary a quest was assigned to.
type GuildQuest struct {
	Identifier   string               `json:"identifier"`
	Requirements resources.Descriptor `json:"requirements"`
}

type GuildQuestAcknowledgement struct {
	Accepted  bool   `json:"accepted"`
	Quest     string `json:"quest"`
	Mercenary string `json:"mercenary"`
}

func Accept(quest, mercenary string) GuildQuestAcknowledgement {
	return GuildQuestAcknowledgement{
		Accepted:  true,
		Quest:     quest,
		Mercenary: mercenary,
	}
}

func Deny(quest string) GuildQuestAcknowledgement {
	return GuildQuestAcknowledgement{
		Quest: quest,
	}
}

// Recruit registers a mercenary with the guild.
type Recruit struct {
	Identifier string               `json:"identifier"`
	Offer      resources.Descriptor `json:"offer"`
}

// Dismissal names a mercenary to deregister or release.
type Dismissal struct {
	Identifier string `json:"identifier"`
}

// FollowRequest asks for the quests assigned to one mercenary.
type FollowRequest struct {
	Mercenary string `json:"mercenary"`
}

type MercenaryStatus struct {
	Identifier string               `json:"identifier"`
	Offer      resources.Descriptor `json:"offer"`
	Busy       bool                 `json:"busy"`
	Quest      string               `json:"quest,omitempty"`
}

package redis

import (
	"fmt"

	"github.com/mcoot/leaderboard-go/internal/model"
)

// Key prefix for all leaderboard data
const keyPrefix = "lb"

// defaultBoardName stands in for the empty GameID. It cannot collide with a
// real game id because '~' is not a valid game id character.
const defaultBoardName = "~"

func boardName(game model.GameID) string {
	if game == model.DefaultGame {
		return defaultBoardName
	}
	return string(game)
}

// identityKey returns the Redis key for an Identity
func identityKey(id model.IdentityID) string {
	return fmt.Sprintf("%s:identity:%s", keyPrefix, id)
}

// subjectIndexKey returns the Redis key for the subject -> identity_id index
func subjectIndexKey(subject string) string {
	return fmt.Sprintf("%s:idx:subject:%s", keyPrefix, subject)
}

// sessionKey returns the Redis key for a Session
func sessionKey(token string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, token)
}

// boardKey returns the Redis key for the sorted SET ranking one board
func boardKey(game model.GameID) string {
	return fmt.Sprintf("%s:board:%s", keyPrefix, boardName(game))
}

// entryKey returns the Redis key for the HASH holding one score entry
func entryKey(game model.GameID, id model.IdentityID) string {
	return fmt.Sprintf("%s:entry:%s:%s", keyPrefix, boardName(game), id)
}

// seqKey returns the Redis key for the score sequence counter
func seqKey() string {
	return fmt.Sprintf("%s:seq", keyPrefix)
}

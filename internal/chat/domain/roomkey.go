package domain

import (
	"fmt"
	"sort"
	"strings"
)

// roomKeyPrefix marks an encoded room key.
const roomKeyPrefix = "chat"

// roomKeySep separates the encoded segments. IDs containing it are rejected.
const roomKeySep = ":"

// RoomKey identifies a negotiation room by the product under discussion and
// the members talking about it. Participant order is not significant, the
// encoded form is canonical.
type RoomKey struct {
	ProductID    string
	Participants []string
}

// NewRoomKey builds a validated key. Participants are deduplicated and
// sorted so the same pair of members always maps to the same room.
func NewRoomKey(productID string, participants []string) (RoomKey, error) {
	if productID == "" {
		return RoomKey{}, fmt.Errorf("room key: product id is empty")
	}
	if strings.Contains(productID, roomKeySep) {
		return RoomKey{}, fmt.Errorf("room key: product id %q contains reserved separator", productID)
	}

	seen := make(map[string]struct{}, len(participants))
	members := make([]string, 0, len(participants))
	for _, p := range participants {
		if p == "" {
			return RoomKey{}, fmt.Errorf("room key: participant id is empty")
		}
		if strings.Contains(p, roomKeySep) {
			return RoomKey{}, fmt.Errorf("room key: participant id %q contains reserved separator", p)
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		members = append(members, p)
	}

	if len(members) < 2 {
		return RoomKey{}, fmt.Errorf("room key: need at least two distinct participants, got %d", len(members))
	}

	sort.Strings(members)
	return RoomKey{ProductID: productID, Participants: members}, nil
}

// Encode renders the canonical string form, e.g.
// "chat:prod-42:buyer-1:seller-9".
func (k RoomKey) Encode() string {
	parts := make([]string, 0, len(k.Participants)+2)
	parts = append(parts, roomKeyPrefix, k.ProductID)
	parts = append(parts, k.Participants...)
	return strings.Join(parts, roomKeySep)
}

// Has reports whether memberID is one of the key's participants.
func (k RoomKey) Has(memberID string) bool {
	for _, p := range k.Participants {
		if p == memberID {
			return true
		}
	}
	return false
}

// ParseRoomKey is the inverse of Encode. Any string not produced by Encode
// fails with an error rather than yielding a partial key.
func ParseRoomKey(s string) (RoomKey, error) {
	segs := strings.Split(s, roomKeySep)
	if len(segs) < 4 {
		return RoomKey{}, fmt.Errorf("room key %q: expected at least 4 segments, got %d", s, len(segs))
	}
	if segs[0] != roomKeyPrefix {
		return RoomKey{}, fmt.Errorf("room key %q: missing %q prefix", s, roomKeyPrefix)
	}

	return NewRoomKey(segs[1], segs[2:])
}

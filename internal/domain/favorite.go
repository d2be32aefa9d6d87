package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// FavoriteStorageKey is the local storage key of the favorite set.
const FavoriteStorageKey = "favorite-perfumes-storage"

// IdentifierSetKind tags a persisted set of identifiers.
const IdentifierSetKind = "identifier-set"

// IdentifierSet is the persisted form of a set of ids. It is tagged so it
// decodes back to a set and never to a plain list.
type IdentifierSet struct {
	Kind    string   `json:"kind"`
	Members []string `json:"members"`
}

// EncodeIdentifierSet serializes ids with members in sorted order.
func EncodeIdentifierSet(ids map[string]struct{}) ([]byte, error) {
	members := make([]string, 0, len(ids))
	for id := range ids {
		members = append(members, id)
	}
	sort.Strings(members)
	return json.Marshal(IdentifierSet{Kind: IdentifierSetKind, Members: members})
}

// DecodeIdentifierSet parses a payload written by EncodeIdentifierSet.
// Duplicate members collapse into one.
func DecodeIdentifierSet(data []byte) (map[string]struct{}, error) {
	var env IdentifierSet
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode identifier set: %w", err)
	}
	if env.Kind != IdentifierSetKind {
		return nil, fmt.Errorf("decode identifier set: unexpected kind %q", env.Kind)
	}
	ids := make(map[string]struct{}, len(env.Members))
	for _, id := range env.Members {
		ids[id] = struct{}{}
	}
	return ids, nil
}

package graph

import (
	"strings"

	"scholarnet/internal/models"
)

type NodeKind uint8

const (
	KindDocument NodeKind = iota
	KindAuthor
	KindInstitution
	KindKeyword
)

var kindNames = [...]string{
	KindDocument:    "document",
	KindAuthor:      "author",
	KindInstitution: "institution",
	KindKeyword:     "keyword",
}

func (k NodeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsPlayer reports whether nodes of this kind compete in the key player ranking.
func (k NodeKind) IsPlayer() bool {
	return k == KindAuthor || k == KindInstitution
}

type Relation uint8

const (
	RelWrote Relation = iota
	RelCoAuthor
	RelAffiliatedWith
	RelContainsKeyword
)

var relationNames = [...]string{
	RelWrote:           "WROTE",
	RelCoAuthor:        "CO_AUTHOR",
	RelAffiliatedWith:  "AFFILIATED_WITH",
	RelContainsKeyword: "CONTAINS_KEYWORD",
}

func (r Relation) String() string {
	if int(r) < len(relationNames) {
		return relationNames[r]
	}
	return "UNKNOWN"
}

// NodeID is the dedup key of a node. Two observations with the same kind and
// value always resolve to the same node.
type NodeID struct {
	Kind  NodeKind
	Value string
}

func (id NodeID) String() string {
	return id.Kind.String() + ":" + id.Value
}

func DocumentID(v string) NodeID    { return NodeID{Kind: KindDocument, Value: v} }
func AuthorID(v string) NodeID      { return NodeID{Kind: KindAuthor, Value: v} }
func InstitutionID(v string) NodeID { return NodeID{Kind: KindInstitution, Value: v} }
func KeywordID(v string) NodeID     { return NodeID{Kind: KindKeyword, Value: v} }

type Role uint8

const (
	RoleAuthor Role = 1 << iota
	RoleInventor
	RoleInstitution
)

func (r Role) String() string {
	switch r {
	case RoleAuthor:
		return "author"
	case RoleInventor:
		return "inventor"
	case RoleInstitution:
		return "institution"
	default:
		return ""
	}
}

// RoleSet is the set of roles observed for one author or institution node.
type RoleSet uint8

func (s RoleSet) Has(r Role) bool { return uint8(s)&uint8(r) != 0 }

func (s *RoleSet) Add(r Role) { *s = RoleSet(uint8(*s) | uint8(r)) }

// rolePrecedence orders roles for display type resolution, strongest first.
var rolePrecedence = []Role{RoleInventor, RoleAuthor, RoleInstitution}

// DisplayType resolves the type shown for a ranked entity: the first role of the
// precedence table present in the set, else the node kind itself.
func (s RoleSet) DisplayType(kind NodeKind) string {
	for _, r := range rolePrecedence {
		if s.Has(r) {
			return r.String()
		}
	}
	return kind.String()
}

// RoleForDocument returns the role an author takes on a document of the given type.
func RoleForDocument(docType string) Role {
	if strings.EqualFold(docType, models.DocumentTypePatent) {
		return RoleInventor
	}
	return RoleAuthor
}

// EntityStats counts participation of authors and institutions.
type EntityStats struct {
	RelatedWorks   int
	Collaborations int
}

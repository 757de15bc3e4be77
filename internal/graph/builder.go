package graph

import "scholarnet/internal/models"

// Network is the output of Build: the graph plus the per-entity bookkeeping the
// ranker needs. All maps are keyed by node index and only hold author and
// institution nodes.
type Network struct {
	Graph    *Graph
	Stats    map[int]*EntityStats
	Keywords map[int]map[string]struct{}
	Roles    map[int]RoleSet
}

func (n *Network) stats(i int) *EntityStats {
	s, ok := n.Stats[i]
	if !ok {
		s = &EntityStats{}
		n.Stats[i] = s
	}
	return s
}

// StatsOf returns a copy of the counters of node i, zero when none were recorded.
func (n *Network) StatsOf(i int) EntityStats {
	if s, ok := n.Stats[i]; ok {
		return *s
	}
	return EntityStats{}
}

func (n *Network) addKeywords(i int, kws []string) {
	set, ok := n.Keywords[i]
	if !ok {
		set = make(map[string]struct{}, len(kws))
		n.Keywords[i] = set
	}
	for _, kw := range kws {
		set[kw] = struct{}{}
	}
}

// Build turns documents into a typed weighted graph. Authors and institutions are
// visited in the order each document lists them.
func Build(docs []models.Document) *Network {
	n := &Network{
		Graph:    New(),
		Stats:    map[int]*EntityStats{},
		Keywords: map[int]map[string]struct{}{},
		Roles:    map[int]RoleSet{},
	}
	g := n.Graph
	for _, doc := range docs {
		docNode := g.AddNode(DocumentID(doc.ID))

		role := RoleForDocument(doc.Type)
		authors := make([]int, 0, len(doc.Authors))
		for _, name := range doc.Authors {
			a := g.AddNode(AuthorID(name))
			g.AddEdge(a, docNode, RelWrote)
			n.stats(a).RelatedWorks++
			rs := n.Roles[a]
			rs.Add(role)
			n.Roles[a] = rs
			authors = append(authors, a)
		}

		for i := 0; i < len(authors); i++ {
			for j := i + 1; j < len(authors); j++ {
				if !g.AddEdge(authors[i], authors[j], RelCoAuthor) {
					continue
				}
				n.stats(authors[i]).Collaborations++
				n.stats(authors[j]).Collaborations++
			}
		}

		institutions := make([]int, 0, len(doc.Institutions))
		for _, name := range doc.Institutions {
			in := g.AddNode(InstitutionID(name))
			rs := n.Roles[in]
			rs.Add(RoleInstitution)
			n.Roles[in] = rs
			n.stats(in)
			institutions = append(institutions, in)
		}

		for _, a := range authors {
			for _, in := range institutions {
				g.AddEdge(a, in, RelAffiliatedWith)
				n.stats(in).RelatedWorks++
			}
		}

		keywords := DocumentKeywords(doc)
		for _, kw := range keywords {
			k := g.AddNode(KeywordID(kw))
			g.AddEdge(docNode, k, RelContainsKeyword)
		}

		for _, a := range authors {
			n.addKeywords(a, keywords)
		}
		for _, in := range institutions {
			n.addKeywords(in, keywords)
		}
	}
	return n
}

// DocumentKeywords returns the distinct topic and subtopic labels of doc in
// first-seen order. Labels are taken as given, the empty label included.
func DocumentKeywords(doc models.Document) []string {
	if len(doc.Topics) == 0 {
		return nil
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, len(doc.Topics)*4)
	add := func(kw string) {
		if _, ok := seen[kw]; ok {
			return
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	for _, t := range doc.Topics {
		add(t.Topic)
		for _, s := range t.Subtopics {
			add(s)
		}
	}
	return out
}

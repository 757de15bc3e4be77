package graph

import (
	"regexp"
	"strings"

	"scholarnet/internal/models"
)

var ws = regexp.MustCompile(`\s+`)

// CleanLabel trims a name and collapses inner whitespace runs. Case is kept:
// node identity stays case sensitive.
func CleanLabel(s string) string {
	s = strings.TrimSpace(s)
	return ws.ReplaceAllString(s, " ")
}

// NormalizeDocument cleans the labels of doc and drops blank entries. It
// reports false when the document has no usable id.
func NormalizeDocument(doc models.Document) (models.Document, bool) {
	doc.ID = strings.TrimSpace(doc.ID)
	if doc.ID == "" {
		return models.Document{}, false
	}
	doc.Type = strings.TrimSpace(doc.Type)
	doc.Authors = cleanList(doc.Authors)
	doc.Institutions = cleanList(doc.Institutions)
	if doc.Topics != nil {
		topics := make([]models.Topic, 0, len(doc.Topics))
		for _, t := range doc.Topics {
			t.Topic = CleanLabel(t.Topic)
			t.Subtopics = cleanList(t.Subtopics)
			if t.Topic == "" && len(t.Subtopics) == 0 {
				continue
			}
			topics = append(topics, t)
		}
		doc.Topics = topics
	}
	return doc, true
}

// NormalizeDocuments applies NormalizeDocument and skips documents without id.
func NormalizeDocuments(docs []models.Document) []models.Document {
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		n, ok := NormalizeDocument(d)
		if !ok {
			continue
		}
		out = append(out, n)
	}
	return out
}

func cleanList(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = CleanLabel(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

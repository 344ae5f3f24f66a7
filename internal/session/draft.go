package session

import (
	"encoding/json"
	"time"

	v1 "github.com/emrgen/article/apis/v1"
	"github.com/emrgen/article/internal/richtext"
)

// Draft is the in-memory, not-yet-confirmed representation of an article
// being edited. The aid is empty until the first successful publish binds
// the server-assigned one; it never changes afterwards.
type Draft struct {
	AID       string
	UID       string
	Title     string
	Poster    string
	Doc       *richtext.Doc
	Tags      map[string][]string
	Chain     string
	UpdatedAt *time.Time
}

func newDraft(uid string) *Draft {
	return &Draft{
		UID:   uid,
		Title: richtext.DefaultTitle,
		Doc:   &richtext.Doc{},
	}
}

func (d *Draft) clone() *Draft {
	out := *d
	if d.UpdatedAt != nil {
		at := *d.UpdatedAt
		out.UpdatedAt = &at
	}
	if d.Tags != nil {
		out.Tags = make(map[string][]string, len(d.Tags))
		for key, tags := range d.Tags {
			out.Tags[key] = append([]string(nil), tags...)
		}
	}
	return &out
}

// draftFromRecord populates a draft from a fetched article record.
func draftFromRecord(record *v1.Article) (*Draft, error) {
	doc, err := richtext.Parse([]byte(record.Content))
	if err != nil {
		return nil, err
	}

	tags, err := parseTags(record.Tags)
	if err != nil {
		return nil, err
	}

	draft := &Draft{
		AID:    record.AID,
		UID:    record.UID,
		Title:  record.Title,
		Poster: record.Poster,
		Doc:    doc,
		Tags:   tags,
		Chain:  record.Chain,
	}

	if !record.UpdatedAt.IsZero() {
		at := record.UpdatedAt
		draft.UpdatedAt = &at
	}

	return draft, nil
}

// toRequest serializes the draft into an update payload. The chain override,
// when non-empty, replaces the draft's current ledger reference.
func (d *Draft) toRequest(chain string) (*v1.UpdateArticleRequest, error) {
	content, err := richtext.Serialize(d.Doc)
	if err != nil {
		return nil, err
	}

	tags, err := serializeTags(d.Tags)
	if err != nil {
		return nil, err
	}

	if chain == "" {
		chain = d.Chain
	}

	return &v1.UpdateArticleRequest{
		AID:       d.AID,
		UID:       d.UID,
		Title:     d.Title,
		Poster:    d.Poster,
		Content:   string(content),
		Tags:      tags,
		Chain:     chain,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func parseTags(data string) (map[string][]string, error) {
	if data == "" {
		return nil, nil
	}
	var tags map[string][]string
	if err := json.Unmarshal([]byte(data), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func serializeTags(tags map[string][]string) (string, error) {
	if len(tags) == 0 {
		return "", nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// AdvisoryClient scores petitions and requests dossiers and opinions.
type AdvisoryClient struct {
	client *Client
}

// Petition is a document to score. ContentType must be one the server can
// extract: text/plain, text/markdown or text/html.
type Petition struct {
	Filename    string
	ContentType string
	Data        []byte
}

// TopicSimilarity is the similarity of the petition to one topic, in percent.
type TopicSimilarity struct {
	Topic string  `json:"topic"`
	Score float64 `json:"score"`
}

// Match is the best topic and its adherence score (0-100).
type Match struct {
	Topic        string            `json:"topic"`
	Score        float64           `json:"score"`
	Similarities []TopicSimilarity `json:"similarities"`
	Model        string            `json:"model"`
	Took         time.Duration     `json:"took_ns"`
}

// ArchivedPetition locates the stored copy of a scored petition.
type ArchivedPetition struct {
	Bucket      string    `json:"bucket"`
	Key         string    `json:"key"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	ETag        string    `json:"etag,omitempty"`
	StoredAt    time.Time `json:"stored_at"`
}

// Evaluation is the adherence of a petition to an adjudicator's history.
type Evaluation struct {
	Adjudicator *Adjudicator      `json:"adjudicator"`
	Records     int64             `json:"records"`
	Topics      []TopicCount      `json:"topics"`
	Match       *Match            `json:"match"`
	Archive     *ArchivedPetition `json:"archive,omitempty"`
}

// Dossier is the generated behavioural profile of an adjudicator.
type Dossier struct {
	AdjudicatorID int64     `json:"adjudicator_id"`
	Adjudicator   string    `json:"adjudicator"`
	Records       int       `json:"records"`
	Text          string    `json:"text"`
	Model         string    `json:"model"`
	GeneratedAt   time.Time `json:"generated_at"`
	Cached        bool      `json:"cached"`
}

// Opinion is the generated strategic opinion for a petition.
type Opinion struct {
	AdjudicatorID int64   `json:"adjudicator_id"`
	Adjudicator   string  `json:"adjudicator"`
	Topic         string  `json:"topic"`
	Score         float64 `json:"score"`
	Text          string  `json:"text"`
	Model         string  `json:"model"`
	UsedDossier   bool    `json:"used_dossier"`
	ArchiveKey    string  `json:"archive_key,omitempty"`
	Notice        string  `json:"notice"`
}

// Score computes the adherence of p to the adjudicator's topic history.
func (a *AdvisoryClient) Score(ctx context.Context, adjudicatorID int64, p Petition) (*Evaluation, error) {
	body, err := multipartPetition(p)
	if err != nil {
		return nil, err
	}
	var out Evaluation
	if err := a.client.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/adjudicators/%d/score", adjudicatorID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Dossier returns the adjudicator's behavioural profile. refresh bypasses
// the server cache.
func (a *AdvisoryClient) Dossier(ctx context.Context, adjudicatorID int64, refresh bool) (*Dossier, error) {
	path := fmt.Sprintf("/api/v1/adjudicators/%d/dossier", adjudicatorID)
	if refresh {
		path += "?refresh=true"
	}
	var out Dossier
	if err := a.client.post(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Opinion scores p and asks for a strategic opinion on it.
func (a *AdvisoryClient) Opinion(ctx context.Context, adjudicatorID int64, p Petition) (*Opinion, error) {
	body, err := multipartPetition(p)
	if err != nil {
		return nil, err
	}
	var out Opinion
	if err := a.client.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/adjudicators/%d/opinion", adjudicatorID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Models lists the text-generation models in server preference order.
func (a *AdvisoryClient) Models(ctx context.Context) ([]string, error) {
	var out struct {
		Models []string `json:"models"`
	}
	if err := a.client.get(ctx, "/api/v1/llm/models", &out); err != nil {
		return nil, err
	}
	return out.Models, nil
}

// multipartPetition encodes p in the "file" field with its own content type.
func multipartPetition(p Petition) (*payload, error) {
	if len(p.Data) == 0 {
		return nil, fmt.Errorf("%w: petition is empty", ErrInvalidConfig)
	}
	filename := p.Filename
	if filename == "" {
		filename = "petition.txt"
	}
	contentType := p.ContentType
	if contentType == "" {
		contentType = "text/plain"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filename)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(p.Data); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	return &payload{data: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

//Personal.AI order the ending

package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/c360studio/semactivity/codec"
	"github.com/c360studio/semactivity/document"
	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "activity",
		Category:    "document",
		Version:     "v1",
		Description: "Activity document payload with its wire JSON and graph triples",
		Factory:     func() any { return &DocumentPayload{} },
	})
	if err != nil {
		panic("failed to register DocumentPayload: " + err.Error())
	}
}

// DocumentType is the message type for document payloads.
var DocumentType = message.Type{Domain: "activity", Category: "document", Version: "v1"}

// DocumentPayload implements message.Payload and graph.Graphable for
// document ingestion. Document carries the wire JSON so consumers can decode
// it with their own codec.
type DocumentPayload struct {
	EntityID_  string           `json:"id"`
	Document   json.RawMessage  `json:"document"`
	TripleData []message.Triple `json:"triples"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// NewDocumentPayload encodes doc with c and flattens it into triples.
func NewDocumentPayload(c *codec.Codec, doc document.Typed, now time.Time) (*DocumentPayload, error) {
	data, err := c.Encode(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	id, triples := Flatten(doc, now)
	return &DocumentPayload{
		EntityID_:  id,
		Document:   data,
		TripleData: triples,
		UpdatedAt:  now,
	}, nil
}

func (p *DocumentPayload) EntityID() string          { return p.EntityID_ }
func (p *DocumentPayload) Triples() []message.Triple { return p.TripleData }
func (p *DocumentPayload) Schema() message.Type      { return DocumentType }

func (p *DocumentPayload) Validate() error {
	if p.EntityID_ == "" {
		return errors.New("entity ID is required")
	}
	if len(p.Document) == 0 {
		return errors.New("document is required")
	}
	return nil
}

// Decode re-hydrates the carried document.
func (p *DocumentPayload) Decode(c *codec.Codec) (document.Typed, error) {
	return c.Decode(p.Document, nil)
}

func (p *DocumentPayload) MarshalJSON() ([]byte, error) {
	type Alias DocumentPayload
	return json.Marshal((*Alias)(p))
}

func (p *DocumentPayload) UnmarshalJSON(data []byte) error {
	type Alias DocumentPayload
	return json.Unmarshal(data, (*Alias)(p))
}

package model

import (
	"fmt"
	"time"
)

// ClientStatusApproved is the only status a client document carries.
const ClientStatusApproved = "approved"

// Client is a durable approved-user record keyed by AuthUID.
type Client struct {
	CIN          string
	Name         string
	Email        string
	Phone        string
	AuthUID      string
	RequestType  RequestKind
	Status       string
	DateAccepted time.Time
	EC           int
}

// NewClientFromRequest builds the client record an approval writes.
func NewClientFromRequest(r Request, acceptedAt time.Time) Client {
	return Client{
		CIN:          r.CIN,
		Name:         r.Name,
		Email:        r.Email,
		Phone:        r.Phone,
		AuthUID:      r.AuthUID,
		RequestType:  r.RequestType,
		Status:       ClientStatusApproved,
		DateAccepted: acceptedAt.UTC(),
		EC:           r.EC,
	}
}

// Fields returns the persisted shape of the client.
func (c Client) Fields() map[string]any {
	return map[string]any{
		FieldCIN:          c.CIN,
		FieldName:         c.Name,
		FieldEmail:        c.Email,
		FieldPhone:        c.Phone,
		FieldAuthUID:      c.AuthUID,
		FieldRequestType:  string(c.RequestType),
		FieldStatus:       c.Status,
		FieldDateAccepted: c.DateAccepted.Format(time.RFC3339Nano),
		FieldEC:           c.EC,
	}
}

// ClientFromDocument maps a client document to a Client. The document ID is
// the principal reference and wins over a missing authUid field.
func ClientFromDocument(doc Document) (Client, error) {
	ec, err := intField(doc.Data, FieldEC)
	if err != nil {
		return Client{}, fmt.Errorf("failed to decode client %q: %w", doc.ID, err)
	}

	c := Client{
		CIN:         stringField(doc.Data, FieldCIN),
		Name:        stringField(doc.Data, FieldName),
		Email:       stringField(doc.Data, FieldEmail),
		Phone:       stringField(doc.Data, FieldPhone),
		AuthUID:     stringField(doc.Data, FieldAuthUID),
		RequestType: RequestKind(stringField(doc.Data, FieldRequestType)),
		Status:      stringField(doc.Data, FieldStatus),
		EC:          ec,
	}
	if c.AuthUID == "" {
		c.AuthUID = doc.ID
	}
	if raw := stringField(doc.Data, FieldDateAccepted); raw != "" {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			c.DateAccepted = t
		}
	}

	return c, nil
}

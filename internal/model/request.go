package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// RequestKind is the kind of onboarding request.
type RequestKind string

const (
	RequestKindSignup RequestKind = "signup"
	RequestKindOther  RequestKind = "other"
)

// RequestStatus is the status carried on a request document.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusDeclined RequestStatus = "declined"
)

// Request document fields.
const (
	FieldCIN          = "cin"
	FieldName         = "name"
	FieldEmail        = "email"
	FieldPhone        = "phone"
	FieldRequestType  = "requestType"
	FieldDate         = "date"
	FieldStatus       = "status"
	FieldAuthUID      = "authUid"
	FieldEC           = "ec"
	FieldDateAccepted = "dateAccepted"
)

// Request is a pending onboarding intent.
type Request struct {
	ID          string
	CIN         string
	Name        string
	Email       string
	Phone       string
	RequestType RequestKind
	Date        string
	Status      RequestStatus
	AuthUID     string
	EC          int
}

// RequestFromDocument maps a request document to a Request.
func RequestFromDocument(doc Document) (Request, error) {
	ec, err := intField(doc.Data, FieldEC)
	if err != nil {
		return Request{}, fmt.Errorf("failed to decode request %q: %w", doc.ID, err)
	}

	return Request{
		ID:          doc.ID,
		CIN:         stringField(doc.Data, FieldCIN),
		Name:        stringField(doc.Data, FieldName),
		Email:       stringField(doc.Data, FieldEmail),
		Phone:       stringField(doc.Data, FieldPhone),
		RequestType: RequestKind(stringField(doc.Data, FieldRequestType)),
		Date:        stringField(doc.Data, FieldDate),
		Status:      RequestStatus(stringField(doc.Data, FieldStatus)),
		AuthUID:     stringField(doc.Data, FieldAuthUID),
		EC:          ec,
	}, nil
}

// Fields returns the persisted shape of the request.
func (r Request) Fields() map[string]any {
	return map[string]any{
		FieldCIN:         r.CIN,
		FieldName:        r.Name,
		FieldEmail:       r.Email,
		FieldPhone:       r.Phone,
		FieldRequestType: string(r.RequestType),
		FieldDate:        r.Date,
		FieldStatus:      string(r.Status),
		FieldAuthUID:     r.AuthUID,
		FieldEC:          r.EC,
	}
}

// Validate checks the fields approval depends on.
func (r Request) Validate() error {
	var missing []string
	if r.AuthUID == "" {
		missing = append(missing, FieldAuthUID)
	}
	if r.CIN == "" {
		missing = append(missing, FieldCIN)
	}
	if len(missing) > 0 {
		return &InvalidRequestError{RequestID: r.ID, Fields: missing}
	}
	return nil
}

func stringField(data map[string]any, key string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}

// intField reads an integral number; absent fields read as zero.
func intField(data map[string]any, key string) (int, error) {
	v, ok := data[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("field %s is not an integer: %v", key, n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("field %s is not an integer: %w", key, err)
		}
		return int(i), nil
	default:
		return 0, fmt.Errorf("field %s has unexpected type %T", key, v)
	}
}

package model

import "time"

// RequestType is the kind of access a researcher asks for
type RequestType string

const (
	RequestTypePII    RequestType = "pii"
	RequestTypeNonPII RequestType = "non_pii"
)

// Valid reports whether t is one of the known request types
func (t RequestType) Valid() bool {
	return t == RequestTypePII || t == RequestTypeNonPII
}

// RequestStatus is derived from the granted/denied/downloaded flags
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusGranted    RequestStatus = "granted"
	RequestStatusDenied     RequestStatus = "denied"
	RequestStatusDownloaded RequestStatus = "downloaded"
)

// Request represents a researcher's request for access to a dataset.
// Granted and Denied are never both true.
type Request struct {
	ID               int64       `json:"id"`
	RequestingUserID int64       `json:"requesting_user_id"`
	DataModelID      int64       `json:"data_model_id"`
	Dataset          string      `json:"dataset"`
	RequestType      RequestType `json:"request_type"`
	Message          string      `json:"message"`
	Granted          bool        `json:"granted"`
	Denied           bool        `json:"denied"`
	Downloaded       bool        `json:"downloaded"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        *time.Time  `json:"updated_at"`
}

// Status returns the lifecycle state of the request
func (r Request) Status() RequestStatus {
	switch {
	case r.Downloaded:
		return RequestStatusDownloaded
	case r.Granted:
		return RequestStatusGranted
	case r.Denied:
		return RequestStatusDenied
	default:
		return RequestStatusPending
	}
}

// IsPending checks if no decision has been made yet
func (r Request) IsPending() bool {
	return r.Status() == RequestStatusPending
}

// RequestDetails is a request loaded together with its related rows.
// User and DataModel are nil when the referenced row no longer exists.
type RequestDetails struct {
	Request   *Request
	User      *User
	DataModel *DataModel
}

// RequestUpdate is the change delta published to real-time observers
type RequestUpdate struct {
	RequestID        int64 `json:"request_id"`
	RequestingUserID int64 `json:"requesting_user_id"`
	Granted          bool  `json:"granted"`
	Denied           bool  `json:"denied"`
}

package types

// RequestStatus is the fulfillment state of a SupplyRequest. Stored as text;
// legacy spellings from older databases are mapped to these values at the
// read boundary (see config.StatusAliases).
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestFulfilled RequestStatus = "fulfilled"
)

type IncidentStatus string

const (
	IncidentOpen   IncidentStatus = "open"
	IncidentClosed IncidentStatus = "closed"
)

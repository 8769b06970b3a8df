package dto

// SyncRequest represents the body of POST /auth/sync. clerkId is accepted
// as an alias for externalId.
type SyncRequest struct {
	ExternalID string `json:"externalId"`
	ClerkID    string `json:"clerkId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
}

// Subject returns the external id named by the request, if any.
func (r SyncRequest) Subject() string {
	if r.ExternalID != "" {
		return r.ExternalID
	}
	return r.ClerkID
}

// SyncResponse acknowledges a successful sync.
type SyncResponse struct {
	Success bool `json:"success"`
}

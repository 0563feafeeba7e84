package types

type OK struct {
	IsOK bool `json:"ok"`
}

type CouchDBError struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// BaseDocument represents a single document returned by Get
type BaseDocument struct {

	// Rev is the revision number returned
	UnderscoreRev string `json:"_rev,omitempty"`
	Rev           string `json:"rev,omitempty"`
	ID            string `json:"id,omitempty"`
	UnderscoreID  string `json:"_id,omitempty"`
	OK            bool   `json:"ok,omitempty"`
}

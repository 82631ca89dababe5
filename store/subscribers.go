package store

import (
	"encoding/json"
	"sort"
	"strings"
)

// SubscriberSet is the set of subscriber addresses maintained in the
// subscriber document. Addresses are normalized to trimmed lower case, so
// membership is case insensitive and duplicates collapse.
type SubscriberSet struct {
	emails map[string]bool
}

func NewSubscriberSet(emails ...string) *SubscriberSet {
	s := &SubscriberSet{emails: make(map[string]bool, len(emails))}
	for _, email := range emails {
		s.Add(email)
	}
	return s
}

type subscriberDocument struct {
	Emails []string `json:"emails"`
}

// ParseSubscriberSet decodes the subscriber document body. An empty or
// malformed body yields an empty set rather than an error, so one bad write
// to the document can never wedge the registry: the next successful update
// rewrites it whole.
func ParseSubscriberSet(body []byte) *SubscriberSet {
	doc := &subscriberDocument{}
	if err := json.Unmarshal(body, doc); err != nil {
		return NewSubscriberSet()
	}
	return NewSubscriberSet(doc.Emails...)
}

func NormalizeAddress(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *SubscriberSet) Add(email string) {
	if email = NormalizeAddress(email); email != "" {
		s.emails[email] = true
	}
}

func (s *SubscriberSet) Remove(email string) {
	delete(s.emails, NormalizeAddress(email))
}

func (s *SubscriberSet) Has(email string) bool {
	return s.emails[NormalizeAddress(email)]
}

func (s *SubscriberSet) Len() int {
	return len(s.emails)
}

// Emails returns the members in sorted order so encoded documents are
// stable across writes.
func (s *SubscriberSet) Emails() []string {
	emails := make([]string, 0, len(s.emails))
	for email := range s.emails {
		emails = append(emails, email)
	}
	sort.Strings(emails)
	return emails
}

// Encode serializes the set as the subscriber document body. The two space
// indent keeps diffs of the document readable in the store's history.
func (s *SubscriberSet) Encode() []byte {
	doc := &subscriberDocument{Emails: s.Emails()}
	body, err := json.MarshalIndent(doc, "", "  ")

	if err != nil {
		// A slice of strings always marshals.
		panic("failed to encode subscriber document: " + err.Error())
	}
	return append(body, '\n')
}

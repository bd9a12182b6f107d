//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const maxLongURLLen = 2048

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9]{2,16}$`)

// ReservedKeys are path segments served by fixed routes; an entry under one could never be reached.
var ReservedKeys = []string{"healthz", "oauth"}

// IsReservedKey reports whether key collides with a fixed route, ignoring case.
func IsReservedKey(key string) bool {
	for _, k := range ReservedKeys {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// ValidKey reports whether key is 2-16 ASCII letters or digits.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// Entry maps a short key to a long URL.
type Entry struct {
	Key        string    `json:"key"        db:"key"`
	OwnerID    string    `json:"oid"        db:"owner_id"`
	LongURL    string    `json:"longurl"    db:"long_url"`
	Persistent bool      `json:"persistent" db:"persistent"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt"  db:"updated_at"`
}

// EntryView is the representation returned to callers.
type EntryView struct {
	Key        string    `json:"key"`
	OwnerID    string    `json:"oid"`
	LongURL    string    `json:"longurl"`
	ShortURL   string    `json:"shorturl"`
	Persistent bool      `json:"persistent"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// View renders the entry with its short URL built from baseURL.
func (e *Entry) View(baseURL string) EntryView {
	return EntryView{
		Key:        e.Key,
		OwnerID:    e.OwnerID,
		LongURL:    e.LongURL,
		ShortURL:   strings.TrimRight(baseURL, "/") + "/" + e.Key,
		Persistent: e.Persistent,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

// CreateEntryRequest represents parameters to create an Entry.
type CreateEntryRequest struct {
	Key        string `json:"key,omitempty"`
	LongURL    string `json:"longurl"`
	Persistent *bool  `json:"persistent,omitempty"`
}

// Validate validates CreateEntryRequest.
func (r *CreateEntryRequest) Validate() error {
	r.Key = strings.TrimSpace(r.Key)
	if r.Key != "" && !ValidKey(r.Key) {
		return errors.New("key must be 2 - 16 alphanumeric characters")
	}
	if IsReservedKey(r.Key) {
		return errors.New("key is reserved")
	}
	r.LongURL = strings.TrimSpace(r.LongURL)
	if r.LongURL == "" {
		return errors.New("longurl is required")
	}
	return validateLongURL(r.LongURL)
}

// UpdateEntryRequest represents parameters to update an Entry.
type UpdateEntryRequest struct {
	LongURL    *string `json:"longurl,omitempty"`
	Persistent *bool   `json:"persistent,omitempty"`
}

// HasUpdates reports whether any field is set in UpdateEntryRequest.
func (r *UpdateEntryRequest) HasUpdates() bool {
	return r.LongURL != nil || r.Persistent != nil
}

// Validate validates UpdateEntryRequest, ensuring at least one field is set.
func (r *UpdateEntryRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("body must contain at least one property: longurl, persistent")
	}
	if r.LongURL != nil {
		u := strings.TrimSpace(*r.LongURL)
		if err := validateLongURL(u); err != nil {
			return err
		}
		*r.LongURL = u
	}
	return nil
}

func validateLongURL(raw string) error {
	if utf8.RuneCountInString(raw) > maxLongURLLen {
		return errors.New("longurl cannot exceed 2048 characters")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("longurl must be url")
	}
	return nil
}

// Call is one recorded redirect through an entry.
type Call struct {
	ID        int64     `json:"id"                db:"id"`
	Key       string    `json:"key"               db:"key"`
	UserID    *string   `json:"userId,omitempty"  db:"user_id"`
	IP        string    `json:"ip"                db:"ip"`
	UserAgent string    `json:"useragent"         db:"user_agent"`
	CreatedAt time.Time `json:"createdAt"         db:"created_at"`
}

// DailyCalls is the number of calls on one UTC date (YYYY-MM-DD).
type DailyCalls struct {
	Date  string `json:"date"  db:"day"`
	Calls int    `json:"calls" db:"calls"`
}

// CallerCalls is the number of calls from one distinct (ip, user agent) pair.
type CallerCalls struct {
	IP        string `db:"ip"`
	UserAgent string `db:"user_agent"`
	Calls     int    `db:"calls"`
}

// EntryStats summarises usage of one entry.
type EntryStats struct {
	Key                  string       `json:"key"`
	Calls                int          `json:"calls"`
	UniqueCallers        int          `json:"uniqueCallers"`
	CallsOfUniqueCallers []int        `json:"callsOfUniqueCallers"`
	History              []DailyCalls `json:"history"`
}

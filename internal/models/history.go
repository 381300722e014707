package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// HistoryEntry is one past assignment event of a network record. User is nil
// when the change was system-initiated.
type HistoryEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"`
	IPAddress  string    `json:"ip_address"`
	MACAddress string    `json:"mac_address"`
	User       *string   `json:"user"`
}

// HistoryEntries decodes the record's history log in stored (append) order.
func (r *NetworkRecord) HistoryEntries() ([]HistoryEntry, error) {
	if len(r.History) == 0 {
		return nil, nil
	}
	var entries []HistoryEntry
	if err := json.Unmarshal(r.History, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AppendChange appends an update event whose action text describes the
// transition from the prior address pair to the record's current one, so
// both old and new values survive in the log.
func (r *NetworkRecord) AppendChange(oldIP, oldMAC string, user *string, now time.Time) error {
	var parts []string
	if oldIP != r.IPAddress {
		parts = append(parts, fmt.Sprintf("ip changed from %s to %s", oldIP, r.IPAddress))
	}
	if oldMAC != r.MACAddress {
		parts = append(parts, fmt.Sprintf("mac changed from %s to %s", oldMAC, r.MACAddress))
	}

	action := "updated"
	if len(parts) > 0 {
		action = "updated: " + strings.Join(parts, ", ")
	}
	return r.AppendHistory(action, user, now)
}

// AppendHistory appends one event capturing the record's current IP and MAC.
// Prior entries are never removed or reordered.
func (r *NetworkRecord) AppendHistory(action string, user *string, now time.Time) error {
	entries, err := r.HistoryEntries()
	if err != nil {
		return err
	}
	entries = append(entries, HistoryEntry{
		Timestamp:  now,
		Action:     action,
		IPAddress:  r.IPAddress,
		MACAddress: r.MACAddress,
		User:       user,
	})
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	r.History = raw
	return nil
}

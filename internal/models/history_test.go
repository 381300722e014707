package models

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAppendHistoryGrowsByOne(t *testing.T) {
	record := NetworkRecord{
		ID:         uuid.New(),
		IPAddress:  "192.168.1.10",
		MACAddress: "AA:BB:CC:DD:EE:FF",
	}

	actor := "alice"
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if err := record.AppendHistory("created", &actor, now); err != nil {
		t.Fatalf("AppendHistory() error = %v", err)
	}
	entries, err := record.HistoryEntries()
	if err != nil {
		t.Fatalf("HistoryEntries() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	got := entries[0]
	if got.Action != "created" || got.IPAddress != "192.168.1.10" || got.MACAddress != "AA:BB:CC:DD:EE:FF" {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if got.User == nil || *got.User != "alice" {
		t.Fatalf("entry user = %v, want alice", got.User)
	}
	if !got.Timestamp.Equal(now) {
		t.Fatalf("entry timestamp = %v, want %v", got.Timestamp, now)
	}
}

func TestAppendHistoryPreservesPriorEntries(t *testing.T) {
	record := NetworkRecord{
		ID:         uuid.New(),
		IPAddress:  "192.168.1.10",
		MACAddress: "AA:BB:CC:DD:EE:FF",
	}
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if err := record.AppendHistory("created", nil, base); err != nil {
		t.Fatalf("AppendHistory() error = %v", err)
	}

	record.IPAddress = "192.168.1.20"
	if err := record.AppendHistory("updated", nil, base.Add(time.Hour)); err != nil {
		t.Fatalf("AppendHistory() error = %v", err)
	}

	entries, err := record.HistoryEntries()
	if err != nil {
		t.Fatalf("HistoryEntries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].IPAddress != "192.168.1.10" || entries[0].Action != "created" {
		t.Fatalf("first entry mutated: %+v", entries[0])
	}
	if entries[1].IPAddress != "192.168.1.20" || entries[1].Action != "updated" {
		t.Fatalf("second entry wrong: %+v", entries[1])
	}
	if entries[1].User != nil {
		t.Fatalf("system entry should carry nil user, got %v", *entries[1].User)
	}
}

func TestAppendChangeRecordsOldAndNewAddress(t *testing.T) {
	record := NetworkRecord{
		ID:         uuid.New(),
		IPAddress:  "192.168.1.1",
		MACAddress: "AA:BB:CC:DD:EE:FF",
	}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	oldIP, oldMAC := record.IPAddress, record.MACAddress
	record.IPAddress = "192.168.1.2"

	if err := record.AppendChange(oldIP, oldMAC, nil, now); err != nil {
		t.Fatalf("AppendChange() error = %v", err)
	}

	entries, err := record.HistoryEntries()
	if err != nil {
		t.Fatalf("HistoryEntries() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}

	got := entries[0]
	if !strings.Contains(got.Action, "192.168.1.1") || !strings.Contains(got.Action, "192.168.1.2") {
		t.Fatalf("action %q must name both old and new IP", got.Action)
	}
	if strings.Contains(got.Action, "mac changed") {
		t.Fatalf("action %q describes a MAC change that did not happen", got.Action)
	}
	if got.IPAddress != "192.168.1.2" {
		t.Fatalf("entry ip = %q, want new address", got.IPAddress)
	}
}

func TestAppendChangeBothAddresses(t *testing.T) {
	record := NetworkRecord{
		ID:         uuid.New(),
		IPAddress:  "10.0.0.5",
		MACAddress: "AA:BB:CC:DD:EE:01",
	}

	oldIP, oldMAC := record.IPAddress, record.MACAddress
	record.IPAddress = "10.0.0.6"
	record.MACAddress = "AA:BB:CC:DD:EE:02"

	if err := record.AppendChange(oldIP, oldMAC, nil, time.Now().UTC()); err != nil {
		t.Fatalf("AppendChange() error = %v", err)
	}

	entries, err := record.HistoryEntries()
	if err != nil {
		t.Fatalf("HistoryEntries() error = %v", err)
	}
	action := entries[0].Action
	for _, want := range []string{"10.0.0.5", "10.0.0.6", "AA:BB:CC:DD:EE:01", "AA:BB:CC:DD:EE:02"} {
		if !strings.Contains(action, want) {
			t.Fatalf("action %q missing %q", action, want)
		}
	}
}

func TestHistoryEntriesEmptyLog(t *testing.T) {
	var record NetworkRecord
	entries, err := record.HistoryEntries()
	if err != nil {
		t.Fatalf("HistoryEntries() error = %v", err)
	}
	if entries != nil {
		t.Fatalf("entries = %v, want nil", entries)
	}
}

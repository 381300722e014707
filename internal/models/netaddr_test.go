package models

import (
	"errors"
	"testing"
)

func TestCanonicalMAC(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "lowercase colons", input: "aa:bb:cc:dd:ee:ff", want: "AA:BB:CC:DD:EE:FF"},
		{name: "already canonical", input: "AA:BB:CC:DD:EE:FF", want: "AA:BB:CC:DD:EE:FF"},
		{name: "mixed case", input: "Aa:bB:Cc:Dd:Ee:fF", want: "AA:BB:CC:DD:EE:FF"},
		{name: "hyphen separated", input: "aa-bb-cc-dd-ee-ff", want: "AA:BB:CC:DD:EE:FF"},
		{name: "surrounding whitespace", input: "  aa:bb:cc:dd:ee:ff ", want: "AA:BB:CC:DD:EE:FF"},
		{name: "too short", input: "aa:bb:cc", wantErr: true},
		{name: "eui64 rejected", input: "aa:bb:cc:dd:ee:ff:00:11", wantErr: true},
		{name: "not hex", input: "zz:bb:cc:dd:ee:ff", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalMAC(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMAC) {
					t.Fatalf("CanonicalMAC() error = %v, want %v", err, ErrInvalidMAC)
				}
				return
			}
			if err != nil {
				t.Fatalf("CanonicalMAC() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("CanonicalMAC() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanonicalMACIdempotent(t *testing.T) {
	first, err := CanonicalMAC("3c:22:fb:01:ab:cd")
	if err != nil {
		t.Fatalf("CanonicalMAC() error = %v", err)
	}
	second, err := CanonicalMAC(first)
	if err != nil {
		t.Fatalf("CanonicalMAC() error = %v", err)
	}
	if first != second {
		t.Fatalf("canonicalization not idempotent: %q then %q", first, second)
	}
}

func TestValidateIPv4(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "plain address", input: "192.168.1.10"},
		{name: "network edges", input: "10.0.0.1"},
		{name: "whitespace trimmed", input: " 172.16.0.5 "},
		{name: "ipv6 rejected", input: "fe80::1", wantErr: true},
		{name: "ipv4 mapped ipv6 rejected", input: "::ffff:192.168.1.10", wantErr: true},
		{name: "hostname rejected", input: "printer.local", wantErr: true},
		{name: "octet overflow", input: "256.1.1.1", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIPv4(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidIP) {
					t.Fatalf("ValidateIPv4() error = %v, want %v", err, ErrInvalidIP)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateIPv4() error = %v", err)
			}
		})
	}
}

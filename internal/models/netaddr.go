package models

import (
	"errors"
	"net"
	"strings"
)

var (
	// ErrInvalidMAC rejects MAC addresses that do not parse as 48-bit EUI.
	ErrInvalidMAC = errors.New("invalid mac address format")
	// ErrInvalidIP rejects anything that is not a plain IPv4 address.
	ErrInvalidIP = errors.New("invalid ipv4 address")
)

// CanonicalMAC normalizes a MAC address to uppercase colon-separated form
// (XX:XX:XX:XX:XX:XX). Canonicalizing an already-canonical address returns
// it unchanged.
func CanonicalMAC(s string) (string, error) {
	hw, err := net.ParseMAC(strings.TrimSpace(s))
	if err != nil || len(hw) != 6 {
		return "", ErrInvalidMAC
	}
	return strings.ToUpper(hw.String()), nil
}

// ValidateIPv4 checks that s is a dotted-quad IPv4 address.
func ValidateIPv4(s string) error {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil || ip.To4() == nil || strings.Contains(s, ":") {
		return ErrInvalidIP
	}
	return nil
}

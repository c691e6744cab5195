package safenet

import (
	"net"
	"testing"
)

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip      string
		private bool
	}{
		{"127.0.0.1", true},
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"169.254.0.1", true},
		{"::1", true},
		{"fe80::1", true},
		{"8.8.8.8", false},
		{"1.1.1.1", false},
		{"2606:4700::1", false},
	}

	for _, tt := range tests {
		ip := net.ParseIP(tt.ip)
		if got := IsPrivateIP(ip); got != tt.private {
			t.Errorf("IsPrivateIP(%s) = %v, want %v", tt.ip, got, tt.private)
		}
	}
}

func TestDialControl(t *testing.T) {
	if err := DialControl("tcp", "127.0.0.1:80", nil); err == nil {
		t.Fatal("expected loopback to be blocked")
	}
	if err := DialControl("tcp", "8.8.8.8:443", nil); err != nil {
		t.Fatalf("expected public IP to be allowed, got %v", err)
	}
}

func TestMaybeDialControl(t *testing.T) {
	if MaybeDialControl(true) != nil {
		t.Fatal("expected nil control when private targets are allowed")
	}
	if MaybeDialControl(false) == nil {
		t.Fatal("expected control function when private targets are blocked")
	}
}

package option

import (
	"bytes"
	"testing"

	"github.com/athena-dhcpd/dhcp4c/pkg/dhcpv4"
)

func TestOptionListDedupReplacesInPlace(t *testing.T) {
	list := NewOptionList()
	first, err := FromShortValue(dhcpv4.OptionMaxDHCPMessageSize, uint16(1500))
	if err != nil {
		t.Fatalf("FromShortValue: %v", err)
	}
	list.Append(Option{Code: dhcpv4.OptionHostname, Data: []byte("host")})
	list.Append(first)

	second, err := FromShortValue(dhcpv4.OptionMaxDHCPMessageSize, uint16(5000))
	if err != nil {
		t.Fatalf("FromShortValue: %v", err)
	}
	list.Append(second)

	if list.Len() != 2 {
		t.Fatalf("list.Len() = %d, want 2", list.Len())
	}
	got, ok := list.ByCode(dhcpv4.OptionMaxDHCPMessageSize)
	if !ok {
		t.Fatal("MaxDHCPMessageSize missing after replace")
	}
	if !bytes.Equal(got.Data, second.Data) {
		t.Errorf("replaced value = % x, want % x", got.Data, second.Data)
	}

	// Original slot retained: hostname (inserted first) still comes first.
	opts := list.Options()
	if opts[0].Code != dhcpv4.OptionHostname {
		t.Errorf("opts[0].Code = %d, want hostname (%d)", opts[0].Code, dhcpv4.OptionHostname)
	}
	if opts[1].Code != dhcpv4.OptionMaxDHCPMessageSize {
		t.Errorf("opts[1].Code = %d, want max_dhcp_message_size (%d)", opts[1].Code, dhcpv4.OptionMaxDHCPMessageSize)
	}
}

func TestOptionListByCodeAbsence(t *testing.T) {
	list := NewOptionList()
	if _, ok := list.ByCode(dhcpv4.OptionRouter); ok {
		t.Error("expected absence for empty list")
	}
	list.Append(Option{Code: dhcpv4.OptionRouter, Data: []byte{1, 2, 3, 4}})
	if _, ok := list.ByCode(dhcpv4.OptionRouter); !ok {
		t.Error("expected presence after append")
	}
}

func TestOptionListAppendStrictRejectsDuplicate(t *testing.T) {
	list := NewOptionList()
	o := Option{Code: dhcpv4.OptionHostname, Data: []byte("a")}
	if err := list.AppendStrict(o); err != nil {
		t.Fatalf("first AppendStrict: %v", err)
	}
	if err := list.AppendStrict(o); err == nil {
		t.Fatal("expected ErrDuplicateOptionCode on second AppendStrict")
	}
}

func TestOptionListEncodeEndsWithEnd(t *testing.T) {
	list := NewOptionList()
	list.Append(Option{Code: dhcpv4.OptionHostname, Data: []byte("a")})
	encoded := list.Encode()
	if encoded[len(encoded)-1] != byte(dhcpv4.OptionEnd) {
		t.Errorf("last byte = %d, want 255", encoded[len(encoded)-1])
	}
}

func TestOptionListMerge(t *testing.T) {
	base := NewOptionList()
	base.Append(Option{Code: dhcpv4.OptionHostname, Data: []byte("a")})

	extra := NewOptionList()
	extra.Append(Option{Code: dhcpv4.OptionDomainName, Data: []byte("b")})
	extra.Append(Option{Code: dhcpv4.OptionHostname, Data: []byte("c")})

	base.Merge(extra)
	if base.Len() != 2 {
		t.Fatalf("base.Len() = %d, want 2", base.Len())
	}
	got, _ := base.ByCode(dhcpv4.OptionHostname)
	if string(got.Data) != "c" {
		t.Errorf("hostname = %q, want %q (merge should replace)", got.Data, "c")
	}
}

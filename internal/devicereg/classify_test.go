package devicereg

import "testing"

func TestClassifyByVendorID(t *testing.T) {
	if !Classify(firstPartyVendorID, "", "") {
		t.Fatal("expected Apple vendor id to classify first-party")
	}
}

func TestClassifyByNameSubstringCaseInsensitive(t *testing.T) {
	if !Classify(0x1234, "Apple Inc.", "") {
		t.Fatal("expected vendor name substring match")
	}
	if !Classify(0x1234, "", "APPLE Magic Mouse") {
		t.Fatal("expected product name substring match, case-insensitive")
	}
}

func TestClassifyExternalVendorIsNotFirstParty(t *testing.T) {
	if Classify(0x046D, "Logitech", "MX Master 3") {
		t.Fatal("expected a Logitech device to classify as external")
	}
}

func TestDeviceEqualityIgnoresNothingButDeclaredFields(t *testing.T) {
	a := NewDevice(0x046D, 0xC52B, "Logitech", "MX Master 3", KindMouse)
	b := NewDevice(0x046D, 0xC52B, "Logitech", "MX Master 3", KindMouse)
	if !a.Equal(b) {
		t.Fatal("expected identical devices to compare equal")
	}

	c := NewDevice(0x046D, 0xC52C, "Logitech", "MX Master 3", KindMouse)
	if a.Equal(c) {
		t.Fatal("expected devices differing by product id to compare unequal")
	}
}

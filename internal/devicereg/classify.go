package devicereg

import "strings"

// firstPartyVendorID is Apple's USB vendor id. A device is classified
// first-party if its vendor id matches this or its vendor/product name
// contains firstPartyBrand, case-insensitively (spec.md §4.2).
const firstPartyVendorID = 0x05AC

const firstPartyBrand = "apple"

// Kind is the HID usage class a device was matched against.
type Kind int

const (
	KindUnknown Kind = iota
	KindMouse
	KindKeyboard
)

// Device is a snapshot of one attached HID device's identity, stable
// enough to compare by value across enumeration passes.
type Device struct {
	VendorID    int
	ProductID   int
	VendorName  string
	ProductName string
	Kind        Kind
	FirstParty  bool
}

// Classify fills in FirstParty from the vendor id and name heuristics.
func Classify(vendorID int, vendorName, productName string) bool {
	if vendorID == firstPartyVendorID {
		return true
	}
	lowerVendor := strings.ToLower(vendorName)
	lowerProduct := strings.ToLower(productName)
	return strings.Contains(lowerVendor, firstPartyBrand) || strings.Contains(lowerProduct, firstPartyBrand)
}

// NewDevice builds a Device with FirstParty derived via Classify.
func NewDevice(vendorID, productID int, vendorName, productName string, kind Kind) Device {
	return Device{
		VendorID:    vendorID,
		ProductID:   productID,
		VendorName:  vendorName,
		ProductName: productName,
		Kind:        kind,
		FirstParty:  Classify(vendorID, vendorName, productName),
	}
}

// Equal compares two devices by the value-equality set spec.md §4.2
// requires for change-notification de-duplication: {vendorId, productId,
// vendor name, product name, kind, firstParty} — deliberately excluding
// any per-instance IOKit identity.
func (d Device) Equal(other Device) bool {
	return d == other
}

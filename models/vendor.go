package models

import "fmt"

// VendorError is a non-2xx response from an upstream vendor. Handlers surface
// Status and Details in the error payload so the client can tell a vendor
// rejection (quota, bad key, rate limit) from the service being down.
type VendorError struct {
	Vendor  string
	Status  int
	Details string
}

func (e *VendorError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Vendor, e.Status, e.Details)
}

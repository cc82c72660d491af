// Package probe enumerates USB devices that look like MTP devices,
// without opening an MTP session. It exists for pre-flight checks and
// device selection; actual protocol access goes through the mtp
// package.
//
// An interface is considered MTP-capable when it exposes exactly three
// endpoints, bulk-in and bulk-out for data and interrupt-in for
// events. This is the same heuristic libmtp itself applies to devices
// missing a proper PTP class descriptor.
package probe

import (
	"fmt"
	"regexp"
)

// Info describes one candidate device on the bus.
type Info struct {
	BusNumber uint8
	DevNum    uint8
	VendorID  uint16
	ProductID uint16
	Vendor    string
	Product   string
	Serial    string
	PTPClass  bool
}

// ID returns a stable one-line identifier, suitable for pattern
// matching and log output.
func (i *Info) ID() string {
	return fmt.Sprintf("%04x:%04x %s %s %s", i.VendorID, i.ProductID, i.Vendor, i.Product, i.Serial)
}

func (i *Info) String() string {
	return fmt.Sprintf("%s (bus %d, dev %d)", i.ID(), i.BusNumber, i.DevNum)
}

// Match filters candidates whose ID matches the pattern. An empty
// pattern matches everything.
func Match(cands []Info, pattern string) ([]Info, error) {
	if pattern == "" {
		return cands, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad device pattern %q: %w", pattern, err)
	}
	var out []Info
	for _, c := range cands {
		if re.FindString(c.ID()) != "" {
			out = append(out, c)
		}
	}
	return out, nil
}

// Select expects the pattern to single out exactly one device.
func Select(cands []Info, pattern string) (Info, error) {
	found, err := Match(cands, pattern)
	if err != nil {
		return Info{}, err
	}
	switch len(found) {
	case 0:
		return Info{}, fmt.Errorf("no MTP device matched %q", pattern)
	case 1:
		return found[0], nil
	}
	ids := ""
	for i, f := range found {
		if i > 0 {
			ids += ", "
		}
		ids += f.ID()
	}
	return Info{}, fmt.Errorf("ambiguous devices: %s", ids)
}

//go:build !usbdirect

package probe

import (
	"github.com/google/gousb"
)

// List walks the bus with gousb and returns the devices carrying an
// MTP-looking interface. Devices that cannot be opened for string
// descriptors are still reported, with the numeric ids only.
func List() ([]Info, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	var infos []Info
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		_, ok := mtpInterface(desc)
		return ok
	})
	for _, dev := range devs {
		info := Info{
			BusNumber: uint8(dev.Desc.Bus),
			DevNum:    uint8(dev.Desc.Address),
			VendorID:  uint16(dev.Desc.Vendor),
			ProductID: uint16(dev.Desc.Product),
		}
		if s, ok := mtpInterface(dev.Desc); ok {
			info.PTPClass = s.Class == gousb.ClassPTP
		}
		if v, err := dev.Manufacturer(); err == nil {
			info.Vendor = v
		}
		if p, err := dev.Product(); err == nil {
			info.Product = p
		}
		if s, err := dev.SerialNumber(); err == nil {
			info.Serial = s
		}
		infos = append(infos, info)
		dev.Close()
	}
	if err != nil && len(infos) == 0 {
		return nil, err
	}
	return infos, nil
}

// mtpInterface finds the first interface setting with the MTP endpoint
// shape: bulk-in, bulk-out and interrupt-in.
func mtpInterface(desc *gousb.DeviceDesc) (gousb.InterfaceSetting, bool) {
	for _, cfg := range desc.Configs {
		for _, iface := range cfg.Interfaces {
			for _, alt := range iface.AltSettings {
				if len(alt.Endpoints) != 3 {
					continue
				}
				var bulkIn, bulkOut, evIn bool
				for _, ep := range alt.Endpoints {
					switch {
					case ep.Direction == gousb.EndpointDirectionIn && ep.TransferType == gousb.TransferTypeBulk:
						bulkIn = true
					case ep.Direction == gousb.EndpointDirectionOut && ep.TransferType == gousb.TransferTypeBulk:
						bulkOut = true
					case ep.Direction == gousb.EndpointDirectionIn && ep.TransferType == gousb.TransferTypeInterrupt:
						evIn = true
					}
				}
				if bulkIn && bulkOut && evIn {
					return alt, true
				}
			}
		}
	}
	return gousb.InterfaceSetting{}, false
}

//go:build usbdirect

package probe

import (
	"github.com/hanwen/usb"
)

// USB still-image class, used by PTP/MTP interfaces.
const classStillImage = 6

// List walks the bus with the raw libusb wrapper. This backend avoids
// gousb's device claiming and works on systems where only the plain
// libusb bindings are available.
func List() ([]Info, error) {
	c := usb.NewContext()
	defer c.Exit()

	l, err := c.GetDeviceList()
	if err != nil {
		return nil, err
	}
	defer l.Done()

	var infos []Info
	for _, d := range l {
		dd, err := d.GetDeviceDescriptor()
		if err != nil {
			continue
		}
		ptp, ok := hasMTPInterface(d, dd.NumConfigurations)
		if !ok {
			continue
		}

		info := Info{
			BusNumber: d.GetBusNumber(),
			DevNum:    d.GetDeviceAddress(),
			VendorID:  dd.IdVendor,
			ProductID: dd.IdProduct,
			PTPClass:  ptp,
		}
		if h, err := d.Open(); err == nil {
			if s, err := h.GetStringDescriptorASCII(dd.Manufacturer); err == nil {
				info.Vendor = s
			}
			if s, err := h.GetStringDescriptorASCII(dd.Product); err == nil {
				info.Product = s
			}
			if s, err := h.GetStringDescriptorASCII(dd.SerialNumber); err == nil {
				info.Serial = s
			}
			h.Close()
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func hasMTPInterface(d *usb.Device, numConfigs byte) (ptpClass, found bool) {
	for i := byte(0); i < numConfigs; i++ {
		cd, err := d.GetConfigDescriptor(i)
		if err != nil {
			continue
		}
		for _, iface := range cd.Interfaces {
			for _, a := range iface.AltSetting {
				if len(a.EndPoints) != 3 {
					continue
				}
				var bulkIn, bulkOut, evIn bool
				for _, ep := range a.EndPoints {
					switch {
					case ep.Direction() == usb.ENDPOINT_IN && ep.TransferType() == usb.TRANSFER_TYPE_BULK:
						bulkIn = true
					case ep.Direction() == usb.ENDPOINT_OUT && ep.TransferType() == usb.TRANSFER_TYPE_BULK:
						bulkOut = true
					case ep.Direction() == usb.ENDPOINT_IN && ep.TransferType() == usb.TRANSFER_TYPE_INTERRUPT:
						evIn = true
					}
				}
				if bulkIn && bulkOut && evIn {
					return a.InterfaceClass == classStillImage, true
				}
			}
		}
	}
	return false, false
}

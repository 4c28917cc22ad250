package hidreport

import "fmt"

// Descriptor builds the HID report descriptor declaring the report layout
// for n buttons (1 to 8): n button bits padded to a byte, 16-bit relative
// X/Y, 16-bit AC Pan and 16-bit Wheel. The host-side HID function (USB
// gadget configuration or equivalent) must be set up with exactly this
// descriptor for the reports to parse.
func Descriptor(n int) ([]byte, error) {
	if n < 1 || n > 8 {
		return nil, fmt.Errorf("hidreport: button count %d out of range 1..8", n)
	}

	d := []byte{
		0x05, 0x01, // Usage Page (Generic Desktop)
		0x09, 0x02, // Usage (Mouse)
		0xA1, 0x01, // Collection (Application)
		0x09, 0x01, //   Usage (Pointer)
		0xA1, 0x00, //   Collection (Physical)
		0x05, 0x09, //     Usage Page (Button)
		0x19, 0x01, //     Usage Minimum (Button 1)
		0x29, byte(n), //  Usage Maximum (Button n)
		0x15, 0x00, //     Logical Minimum (0)
		0x25, 0x01, //     Logical Maximum (1)
		0x95, byte(n), //  Report Count (n)
		0x75, 0x01, //     Report Size (1)
		0x81, 0x02, //     Input (Data, Variable, Absolute)
	}
	if n < 8 {
		d = append(d,
			0x95, 0x01, //         Report Count (1)
			0x75, byte(8-n), //    Report Size (8-n), pad to the byte
			0x81, 0x01, //         Input (Constant)
		)
	}
	d = append(d,
		0x05, 0x01, //     Usage Page (Generic Desktop)
		0x09, 0x30, //     Usage (X)
		0x09, 0x31, //     Usage (Y)
		0x16, 0x01, 0x80, // Logical Minimum (-32767)
		0x26, 0xFF, 0x7F, // Logical Maximum (32767)
		0x75, 0x10, //     Report Size (16)
		0x95, 0x02, //     Report Count (2)
		0x81, 0x06, //     Input (Data, Variable, Relative)
		0x05, 0x0C, //     Usage Page (Consumer)
		0x0A, 0x38, 0x02, // Usage (AC Pan)
		0x16, 0x01, 0x80, // Logical Minimum (-32767)
		0x26, 0xFF, 0x7F, // Logical Maximum (32767)
		0x75, 0x10, //     Report Size (16)
		0x95, 0x01, //     Report Count (1)
		0x81, 0x06, //     Input (Data, Variable, Relative)
		0x05, 0x01, //     Usage Page (Generic Desktop)
		0x09, 0x38, //     Usage (Wheel)
		0x16, 0x01, 0x80, // Logical Minimum (-32767)
		0x26, 0xFF, 0x7F, // Logical Maximum (32767)
		0x75, 0x10, //     Report Size (16)
		0x95, 0x01, //     Report Count (1)
		0x81, 0x06, //     Input (Data, Variable, Relative)
		0xC0, //   End Collection
		0xC0, // End Collection
	)
	return d, nil
}

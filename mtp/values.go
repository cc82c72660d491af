package mtp

/*
#include <libmtp.h>
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// DataType is the declared data type of a property's values.
type DataType int

const (
	DataTypeInt8   DataType = C.LIBMTP_DATATYPE_INT8
	DataTypeUint8  DataType = C.LIBMTP_DATATYPE_UINT8
	DataTypeInt16  DataType = C.LIBMTP_DATATYPE_INT16
	DataTypeUint16 DataType = C.LIBMTP_DATATYPE_UINT16
	DataTypeInt32  DataType = C.LIBMTP_DATATYPE_INT32
	DataTypeUint32 DataType = C.LIBMTP_DATATYPE_UINT32
	DataTypeInt64  DataType = C.LIBMTP_DATATYPE_INT64
	DataTypeUint64 DataType = C.LIBMTP_DATATYPE_UINT64
)

var dataTypeNames = map[DataType]string{
	DataTypeInt8:   "int8",
	DataTypeUint8:  "uint8",
	DataTypeInt16:  "int16",
	DataTypeUint16: "uint16",
	DataTypeInt32:  "int32",
	DataTypeUint32: "uint32",
	DataTypeInt64:  "int64",
	DataTypeUint64: "uint64",
}

func (t DataType) String() string {
	if n, ok := dataTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("DataType(%d)", int(t))
}

// AllowedValues describes the values a device permits for a property:
// either a Min/Max/Step range or an enumeration in Values. All numbers
// are raw 64-bit widenings; interpret them according to Datatype
// (sign-extended for signed types).
type AllowedValues struct {
	Datatype DataType
	IsRange  bool

	Min, Max, Step uint64
	Values         []uint64
}

func rawVals[T any](p *T, n int, conv func(T) uint64) []uint64 {
	if p == nil || n == 0 {
		return nil
	}
	src := unsafe.Slice(p, n)
	out := make([]uint64, n)
	for i, v := range src {
		out[i] = conv(v)
	}
	return out
}

func allowedValuesFromRaw(av *C.LIBMTP_allowed_values_t) *AllowedValues {
	out := &AllowedValues{
		Datatype: DataType(av.datatype),
		IsRange:  av.is_range != 0,
	}
	n := int(av.num_entries)

	switch out.Datatype {
	case DataTypeInt8:
		out.Min, out.Max, out.Step = uint64(av.i8min), uint64(av.i8max), uint64(av.i8step)
		out.Values = rawVals(av.i8vals, n, func(v C.int8_t) uint64 { return uint64(v) })
	case DataTypeUint8:
		out.Min, out.Max, out.Step = uint64(av.u8min), uint64(av.u8max), uint64(av.u8step)
		out.Values = rawVals(av.u8vals, n, func(v C.uint8_t) uint64 { return uint64(v) })
	case DataTypeInt16:
		out.Min, out.Max, out.Step = uint64(av.i16min), uint64(av.i16max), uint64(av.i16step)
		out.Values = rawVals(av.i16vals, n, func(v C.int16_t) uint64 { return uint64(v) })
	case DataTypeUint16:
		out.Min, out.Max, out.Step = uint64(av.u16min), uint64(av.u16max), uint64(av.u16step)
		out.Values = rawVals(av.u16vals, n, func(v C.uint16_t) uint64 { return uint64(v) })
	case DataTypeInt32:
		out.Min, out.Max, out.Step = uint64(av.i32min), uint64(av.i32max), uint64(av.i32step)
		out.Values = rawVals(av.i32vals, n, func(v C.int32_t) uint64 { return uint64(v) })
	case DataTypeUint32:
		out.Min, out.Max, out.Step = uint64(av.u32min), uint64(av.u32max), uint64(av.u32step)
		out.Values = rawVals(av.u32vals, n, func(v C.uint32_t) uint64 { return uint64(v) })
	case DataTypeInt64:
		out.Min, out.Max, out.Step = uint64(av.i64min), uint64(av.i64max), uint64(av.i64step)
		out.Values = rawVals(av.i64vals, n, func(v C.int64_t) uint64 { return uint64(v) })
	case DataTypeUint64:
		out.Min, out.Max, out.Step = uint64(av.u64min), uint64(av.u64max), uint64(av.u64step)
		out.Values = rawVals(av.u64vals, n, func(v C.uint64_t) uint64 { return uint64(v) })
	}
	return out
}

// allowedValues queries the device for a property's declared values.
// A nil result without error means the device does not expose them.
// Callers hold d.mu.
func (d *Device) allowedValues(prop Property, ft Filetype) (*AllowedValues, error) {
	var av C.LIBMTP_allowed_values_t
	if C.LIBMTP_Get_Allowed_Property_Values(d.me, C.LIBMTP_property_t(prop), C.LIBMTP_filetype_t(ft), &av) != 0 {
		C.LIBMTP_Clear_Errorstack(d.me)
		return nil, nil
	}
	defer C.LIBMTP_destroy_allowed_values_t(&av)
	return allowedValuesFromRaw(&av), nil
}

// AllowedPropertyValues returns the range or enumeration of values the
// device allows for a property on objects of the given filetype, or
// nil when the device does not declare any.
func (d *Device) AllowedPropertyValues(prop Property, ft Filetype) (*AllowedValues, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return nil, err
	}
	return d.allowedValues(prop, ft)
}

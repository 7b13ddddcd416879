// Package normalize converts go.opentelemetry.io/collector/pdata records
// (the in-memory OTLP representation) into the flat, UI-facing DTOs in
// internal/dto.
package normalize

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/collector/pdata/pcommon"

	"github.com/Indomitable/opentelemetry-inspect/internal/dto"
)

// FlattenValue renders a pcommon.Value as a single display string. Arrays
// and key-value lists flatten to a comma-joined textual form rather than
// nested JSON, matching the original's any_value_to_string behavior.
func FlattenValue(v pcommon.Value) string {
	switch v.Type() {
	case pcommon.ValueTypeStr:
		return v.Str()
	case pcommon.ValueTypeBool:
		return strconv.FormatBool(v.Bool())
	case pcommon.ValueTypeInt:
		return strconv.FormatInt(v.Int(), 10)
	case pcommon.ValueTypeDouble:
		return strconv.FormatFloat(v.Double(), 'g', -1, 64)
	case pcommon.ValueTypeBytes:
		return hex.EncodeToString(v.Bytes().AsRaw())
	case pcommon.ValueTypeSlice:
		slice := v.Slice()
		parts := make([]string, 0, slice.Len())
		for i := 0; i < slice.Len(); i++ {
			parts = append(parts, FlattenValue(slice.At(i)))
		}
		return strings.Join(parts, ", ")
	case pcommon.ValueTypeMap:
		return flattenMap(v.Map())
	case pcommon.ValueTypeEmpty:
		return ""
	default:
		return ""
	}
}

func flattenMap(m pcommon.Map) string {
	parts := make([]string, 0, m.Len())
	m.Range(func(k string, v pcommon.Value) bool {
		parts = append(parts, fmt.Sprintf("%s=%s", k, FlattenValue(v)))
		return true
	})
	return strings.Join(parts, ", ")
}

// ExtractTags flattens an attribute map into string/string pairs.
func ExtractTags(m pcommon.Map) map[string]string {
	tags := make(map[string]string, m.Len())
	m.Range(func(k string, v pcommon.Value) bool {
		tags[k] = FlattenValue(v)
		return true
	})
	return tags
}

// promotedResourceKeys are hoisted into ResourceInfo's named fields and
// therefore never duplicated into its Attributes map.
var promotedResourceKeys = map[string]struct{}{
	"service.name":        {},
	"service.version":     {},
	"service.namespace":   {},
	"service.instance.id": {},
}

// ExtractResourceInfo promotes the well-known service.* attributes out of a
// resource's attribute map; everything else is flattened into Attributes.
// Anything missing defaults to the empty string, never "unknown".
func ExtractResourceInfo(res pcommon.Resource) dto.ResourceInfo {
	attrs := res.Attributes()
	get := func(key string) string {
		if v, ok := attrs.Get(key); ok {
			return FlattenValue(v)
		}
		return ""
	}

	rest := make(map[string]string, attrs.Len())
	attrs.Range(func(k string, v pcommon.Value) bool {
		if _, promoted := promotedResourceKeys[k]; !promoted {
			rest[k] = FlattenValue(v)
		}
		return true
	})

	return dto.ResourceInfo{
		ServiceName:       get("service.name"),
		ServiceVersion:    get("service.version"),
		ServiceNamespace:  get("service.namespace"),
		ServiceInstanceID: get("service.instance.id"),
		Attributes:        rest,
	}
}

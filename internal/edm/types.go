package edm

import (
	"fmt"
	"reflect"
	"strings"
)

// Kind identifies the semantic type of a literal or a declared property.
type Kind int

const (
	// KindNull is the kind of the null literal. It is not a property type.
	KindNull Kind = iota
	KindString
	KindInt32
	KindInt64
	KindBoolean
	KindDateTime
	KindDecimal
	KindSingle
	KindDouble
)

var kindNames = map[Kind]string{
	KindNull:     "Null",
	KindString:   "Edm.String",
	KindInt32:    "Edm.Int32",
	KindInt64:    "Edm.Int64",
	KindBoolean:  "Edm.Boolean",
	KindDateTime: "Edm.DateTimeOffset",
	KindDecimal:  "Edm.Decimal",
	KindSingle:   "Edm.Single",
	KindDouble:   "Edm.Double",
}

// String returns the EDM type name (e.g., "Edm.String")
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsNumeric reports whether the kind is one of the numeric kinds.
func (k Kind) IsNumeric() bool {
	switch k {
	case KindInt32, KindInt64, KindDecimal, KindSingle, KindDouble:
		return true
	}
	return false
}

// IsRangeable reports whether values of the kind have an ordering the
// range filters can express.
func (k Kind) IsRangeable() bool {
	return k.IsNumeric() || k == KindDateTime
}

// ParseKind parses an EDM type name or its short form ("string", "int32", ...).
func ParseKind(name string) (Kind, error) {
	short := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "Edm."))
	switch short {
	case "string":
		return KindString, nil
	case "int32", "int", "int16", "byte", "sbyte":
		return KindInt32, nil
	case "int64", "long":
		return KindInt64, nil
	case "boolean", "bool":
		return KindBoolean, nil
	case "datetimeoffset", "datetime", "date":
		return KindDateTime, nil
	case "decimal":
		return KindDecimal, nil
	case "single", "float":
		return KindSingle, nil
	case "double":
		return KindDouble, nil
	}
	return KindNull, fmt.Errorf("unknown EDM type: %s", name)
}

// KindOf infers the kind of a Go type
func KindOf(goType reflect.Type) (Kind, error) {
	if goType == nil {
		return KindNull, fmt.Errorf("nil type")
	}

	// Handle pointer types
	if goType.Kind() == reflect.Ptr {
		goType = goType.Elem()
	}

	if goType.PkgPath() == "time" && goType.Name() == "Time" {
		return KindDateTime, nil
	}

	if goType.PkgPath() == "github.com/shopspring/decimal" && goType.Name() == "Decimal" {
		return KindDecimal, nil
	}

	switch goType.Kind() {
	case reflect.String:
		return KindString, nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint8, reflect.Uint16:
		return KindInt32, nil
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		return KindInt64, nil
	case reflect.Float32:
		return KindSingle, nil
	case reflect.Float64:
		return KindDouble, nil
	case reflect.Bool:
		return KindBoolean, nil
	default:
		return KindNull, fmt.Errorf("unsupported Go type: %s", goType.String())
	}
}

package emit

import (
	"strconv"
	"strings"

	"github.com/wippyai/buffi/registry"
)

// cppType renders a term as a C++ type. User type references are
// qualified with the namespace token; boxed references render through
// the support runtime's value pointer.
func cppType(t registry.Term, ns string) string {
	switch t.Kind {
	case registry.KindBool:
		return "bool"
	case registry.KindU8:
		return "uint8_t"
	case registry.KindI8:
		return "int8_t"
	case registry.KindU16:
		return "uint16_t"
	case registry.KindI16:
		return "int16_t"
	case registry.KindU32:
		return "uint32_t"
	case registry.KindI32:
		return "int32_t"
	case registry.KindU64:
		return "uint64_t"
	case registry.KindI64:
		return "int64_t"
	case registry.KindU128:
		return "serde::uint128_t"
	case registry.KindI128:
		return "serde::int128_t"
	case registry.KindF32:
		return "float"
	case registry.KindF64:
		return "double"
	case registry.KindUnit:
		return "std::tuple<>"
	case registry.KindStr:
		return "std::string"
	case registry.KindBytes:
		return "std::vector<uint8_t>"
	case registry.KindSeq, registry.KindSet:
		return "std::vector<" + cppType(*t.Elem, ns) + ">"
	case registry.KindMap:
		return "std::map<" + cppType(*t.Key, ns) + ", " + cppType(*t.Value, ns) + ">"
	case registry.KindOption:
		return "std::optional<" + cppType(*t.Elem, ns) + ">"
	case registry.KindTuple:
		parts := make([]string, len(t.Items))
		for i, item := range t.Items {
			parts[i] = cppType(item, ns)
		}
		return "std::tuple<" + strings.Join(parts, ", ") + ">"
	case registry.KindArray:
		return "std::array<" + cppType(*t.Elem, ns) + ", " + strconv.Itoa(t.Len) + ">"
	case registry.KindNamed:
		if ns == "" {
			return t.Name
		}
		return ns + "::" + t.Name
	case registry.KindBoxed:
		if ns == "" {
			return "serde::value_ptr<" + t.Name + ">"
		}
		return "serde::value_ptr<" + ns + "::" + t.Name + ">"
	default:
		return "void"
	}
}

// localType renders a term for use inside the target namespace, where
// user types go unqualified.
func localType(t registry.Term) string {
	return cppType(t, "")
}

// returnType renders the facade return type of an Ok arm; unit returns
// collapse to void.
func returnType(t registry.Term) string {
	if t.Kind == registry.KindUnit {
		return "void"
	}
	return localType(t)
}

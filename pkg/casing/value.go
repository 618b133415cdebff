package casing

import (
	"fmt"
	"reflect"
	"time"
	"unsafe"

	jsoniter "github.com/json-iterator/go"
	"github.com/modern-go/reflect2"
)

var valueJSON = newValueAPI()

func newValueAPI() jsoniter.API {
	api := jsoniter.Config{
		EscapeHTML:             false,
		SortMapKeys:            true,
		UseNumber:              true,
		ValidateJsonRawMessage: true,
	}.Froze()
	api.RegisterExtension(&timestampExtension{})
	return api
}

// ToValue converts a typed value (structs with json tags, slices, maps)
// into the generic shape Normalize walks. Timestamps come out in the
// canonical layout; numbers are kept as json.Number.
func ToValue(v interface{}) (interface{}, error) {
	data, err := valueJSON.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("casing: encode %T: %w", v, err)
	}
	var out interface{}
	if err := valueJSON.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("casing: decode %T: %w", v, err)
	}
	return out, nil
}

type timestampExtension struct {
	jsoniter.DummyExtension
}

var timeType = reflect.TypeOf(time.Time{})

func (e *timestampExtension) CreateEncoder(typ reflect2.Type) jsoniter.ValEncoder {
	if typ.Type1() == timeType {
		return timestampEncoder{}
	}
	return nil
}

type timestampEncoder struct{}

func (timestampEncoder) IsEmpty(ptr unsafe.Pointer) bool {
	return (*time.Time)(ptr).IsZero()
}

func (timestampEncoder) Encode(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	stream.WriteString(FormatTimestamp(*(*time.Time)(ptr)))
}

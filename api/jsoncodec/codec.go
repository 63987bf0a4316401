// Пакет jsoncodec регистрирует JSON-кодек для gRPC.
//
// Команды сервиса заказов и каталога товаров передаются как JSON-документы
// (content-subtype "json", заголовок application/grpc+json). Клиенты должны
// выставлять grpc.CallContentSubtype(jsoncodec.Name), сервер выбирает кодек
// автоматически по content-type.
package jsoncodec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// Name — имя кодека и content-subtype.
const Name = "json"

var unmarshalOptions = protojson.UnmarshalOptions{DiscardUnknown: true}

func init() {
	encoding.RegisterCodec(Codec{})
}

// Codec кодирует обычные Go-структуры через encoding/json,
// а proto.Message — через protojson, чтобы сохранить имена полей из .proto.
type Codec struct{}

// Name реализует encoding.Codec.
func (Codec) Name() string {
	return Name
}

// Marshal реализует encoding.Codec.
func (Codec) Marshal(v any) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("jsoncodec: marshal nil message")
	}
	if msg, ok := v.(proto.Message); ok {
		return protojson.Marshal(msg)
	}
	return json.Marshal(v)
}

// Unmarshal реализует encoding.Codec. Пустое тело оставляет v нетронутым.
func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if msg, ok := v.(proto.Message); ok {
		return unmarshalOptions.Unmarshal(data, msg)
	}
	return json.Unmarshal(data, v)
}

// CallOption возвращает опцию вызова, переключающую клиента на JSON-кодек.
func CallOption() grpc.CallOption {
	return grpc.CallContentSubtype(Name)
}

// DialOption выставляет JSON-кодек для всех вызовов соединения.
func DialOption() grpc.DialOption {
	return grpc.WithDefaultCallOptions(CallOption())
}

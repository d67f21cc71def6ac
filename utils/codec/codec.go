package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhissng/relay/utils/types"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedCodec is returned for codec types this package does not handle.
var ErrUnsupportedCodec = errors.New("unsupported codec")

// Encode serializes data based on the codec type.
func Encode[T any](data T, codecType types.CodecType) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch codecType {
	case JSON:
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		err = enc.Encode(data)
	case YAML:
		enc := yaml.NewEncoder(&buf)
		err = enc.Encode(data)
		if err == nil {
			err = enc.Close()
		}
	case MessagePack:
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		err = enc.Encode(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, codecType)
	}

	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes data based on the codec type.
func Decode[T any](data []byte, codecType types.CodecType) (T, error) {
	var result T
	var err error

	switch codecType {
	case JSON:
		err = json.Unmarshal(data, &result)
	case YAML:
		err = yaml.Unmarshal(data, &result)
	case MessagePack:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.SetCustomStructTag("json")
		err = dec.Decode(&result)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedCodec, codecType)
	}

	return result, err
}

// ContentTypeFor returns the MIME type advertised for a codec.
func ContentTypeFor(codecType types.CodecType) types.ContentType {
	switch codecType {
	case MessagePack:
		return ContentTypeMsgPack
	case YAML:
		return ContentTypeYAML
	default:
		return ContentTypeJSON
	}
}

// CodecFor resolves a MIME type back to a codec. Unknown or empty
// content types are treated as JSON.
func CodecFor(contentType string) types.CodecType {
	mime := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch types.ContentType(mime) {
	case ContentTypeMsgPack, "application/x-msgpack":
		return MessagePack
	case ContentTypeYAML, "application/x-yaml", "text/yaml":
		return YAML
	default:
		return JSON
	}
}

// Parse validates a codec name from configuration.
func Parse(name string) (types.CodecType, error) {
	switch c := types.CodecType(strings.ToLower(strings.TrimSpace(name))); c {
	case JSON, YAML, MessagePack:
		return c, nil
	case "":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCodec, name)
	}
}

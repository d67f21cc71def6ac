package codec

import "github.com/abhissng/relay/utils/types"

// for encoding and decoding
const (
	JSON        types.CodecType = "json"
	YAML        types.CodecType = "yaml"
	MessagePack types.CodecType = "msgpack"
)

// MIME types carried in message properties for each codec.
const (
	ContentTypeJSON    types.ContentType = "application/json"
	ContentTypeYAML    types.ContentType = "application/yaml"
	ContentTypeMsgPack types.ContentType = "application/msgpack"
)

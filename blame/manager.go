package blame

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/helpers"
	"github.com/abhissng/relay/utils/types"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

//go:embed error_definition.json
var embeddedBlameData []byte

// BlameDefinition represents a blame definition.
type BlameDefinition struct {
	ReasonCode   string `json:"ReasonCode"`
	Code         string `json:"Code"`
	Message      string `json:"Message"`
	Description  string `json:"Description"`
	Component    string `json:"Component"`
	ResponseType string `json:"ResponseType"`
}

// BlameManager holds the known blame definitions keyed by error code.
type BlameManager struct {
	BlameDefinitions map[types.ErrorCode]Blame
}

var (
	localBlameManager = &BlameManager{BlameDefinitions: map[types.ErrorCode]Blame{}}
	localBlameOnce    sync.Once
)

// getLocalBlameManager returns the package manager, loading the embedded definitions on first use.
func getLocalBlameManager() *BlameManager {
	localBlameOnce.Do(func() {
		if err := InitLocalBlameManager(helpers.NewBundle(helpers.GetDefaultLanguageTag())); err != nil {
			helpers.Println(constant.ERROR, "Error initialising local blame definitions: ", err)
		}
	})
	return localBlameManager
}

// InitLocalBlameManager loads the embedded definitions into the package manager.
func InitLocalBlameManager(bundle *i18n.Bundle) error {
	var definitions []BlameDefinition
	if err := json.Unmarshal(embeddedBlameData, &definitions); err != nil {
		return fmt.Errorf("failed to unmarshal local blame definition file: %w", err)
	}
	localBlameManager.BlameDefinitions = buildDefinitions(definitions, bundle)
	return nil
}

func buildDefinitions(definitions []BlameDefinition, bundle *i18n.Bundle) map[types.ErrorCode]Blame {
	into := make(map[types.ErrorCode]Blame, len(definitions))
	for index, def := range definitions {
		if helpers.IsEmpty(def.ReasonCode) {
			def.ReasonCode = helpers.GenerateReasonCode(ReasonCodeNameSpace, ReasonCodeBase+index)
		}
		into[types.ErrorCode(def.Code)] =
			NewBlame(def.ReasonCode, types.ErrorCode(def.Code), def.Message, def.Description).
				WithComponent(types.ComponentErrorType(def.Component)).
				WithResponseType(types.ResponseErrorType(def.ResponseType)).
				WithBundle(bundle)
	}
	return into
}

// RetrieveBlameCache returns a copy of the definition for errorCode.
func (bw *BlameManager) RetrieveBlameCache(errorCode types.ErrorCode) *Error {
	if cache, ok := bw.BlameDefinitions[errorCode]; ok {
		return cache.Clone()
	}
	return NewBasicError(errorCode)
}

// FetchBlameForError fetches a blame definition for the given error code.
func (bw *BlameManager) FetchBlameForError(errorCode types.ErrorCode, opts ...BlameOption) Blame {
	return bw.RetrieveBlameCache(errorCode).Wrap(opts...)
}

// BlameOption defines an option for modifying Blame creation.
type BlameOption func(*BlameOptions)

// BlameOptions holds options for creating Blame instances.
type BlameOptions struct {
	Fields map[string]any
	Causes []error
}

// NewBlameOptions creates a new BlameOptions instance.
func NewBlameOptions() *BlameOptions {
	return &BlameOptions{
		Fields: make(map[string]any),
		Causes: make([]error, 0),
	}
}

// WithField adds a single field to the Blame.
func WithField(key string, value any) BlameOption {
	return func(opts *BlameOptions) {
		opts.Fields[key] = value
	}
}

// WithCauses adds causes to the Blame.
func WithCauses(causes ...error) BlameOption {
	return func(opts *BlameOptions) {
		for _, cause := range causes {
			if cause != nil {
				opts.Causes = append(opts.Causes, cause)
			}
		}
	}
}

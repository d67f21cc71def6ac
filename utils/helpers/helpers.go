package helpers

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"reflect"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/types"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
)

// isEmptyPrimitive handles primitive type checks
func isEmptyPrimitive(v reflect.Value) (bool, bool) {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == "", true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0, true
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0, true
	case reflect.Bool:
		return !v.Bool(), true
	}
	return false, false
}

// isEmptyCollection handles collection type checks
func isEmptyCollection(v reflect.Value) (bool, bool) {
	switch v.Kind() {
	case reflect.Func:
		return v.IsNil(), true
	case reflect.Map, reflect.Slice, reflect.Chan:
		return v.IsNil() || v.Len() == 0, true
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if !IsEmpty(v.Index(i).Interface()) {
				return false, true
			}
		}
		return true, true
	}
	return false, false
}

// isEmptyStruct handles struct type checks
func isEmptyStruct(v reflect.Value) (bool, bool) {
	if v.Kind() != reflect.Struct {
		return false, false
	}

	if v.Type() == reflect.TypeOf(time.Time{}) {
		return v.Interface().(time.Time).IsZero(), true
	}

	for i := 0; i < v.NumField(); i++ {
		if !v.Type().Field(i).IsExported() {
			continue
		}
		if !IsEmpty(v.Field(i).Interface()) {
			return false, true
		}
	}
	return true, true
}

// IsEmpty checks if the given interface value represents an empty or zero value.
func IsEmpty[T any](value T) bool {
	if v, ok := any(value).(types.EmptyCheck); ok {
		return v.IsEmpty()
	}

	v := reflect.ValueOf(value)
	if !v.IsValid() {
		return true
	}

	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return true
		}
		return IsEmpty(v.Elem().Interface())
	}

	if isEmpty, ok := isEmptyPrimitive(v); ok {
		return isEmpty
	}

	if isEmpty, ok := isEmptyCollection(v); ok {
		return isEmpty
	}

	if isEmpty, ok := isEmptyStruct(v); ok {
		return isEmpty
	}

	return v.IsZero()
}

// FetchErrorStrings returns a slice of strings containing the error messages
func FetchErrorStrings(errs []error) []string {
	errStrings := make([]string, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			errStrings = append(errStrings, err.Error())
		}
	}
	return errStrings
}

// FetchHTTPStatusCode returns the HTTP status code associated with the response type
func FetchHTTPStatusCode(response types.ResponseErrorType) int {
	switch response {
	case constant.BadRequest:
		return http.StatusBadRequest
	case constant.Unauthorized:
		return http.StatusUnauthorized
	case constant.Forbidden:
		return http.StatusForbidden
	case constant.NotFound:
		return http.StatusNotFound
	case constant.AlreadyExists, constant.Conflict:
		return http.StatusConflict
	case constant.BadGateway:
		return http.StatusBadGateway
	case constant.ServiceUnavailable:
		return http.StatusServiceUnavailable
	case constant.TooManyRequests:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// IsProdEnvironment returns true if Environment is set to "prod" or "production"
func IsProdEnvironment() bool {
	switch strings.ToLower(GetEnvironment()) {
	case "prod", "production":
		return true
	default:
		return false
	}
}

// GetEnvironment reads the environment name from Environment, falling back to RunMode.
func GetEnvironment() string {
	if env := os.Getenv(constant.Environment); env != "" {
		return env
	}
	return os.Getenv(constant.RunMode)
}

// GetServiceName returns the service name used in reason codes and logs.
func GetServiceName() string {
	if name := os.Getenv("SERVICE_NAME"); name != "" {
		return name
	}
	return constant.DefaultServiceName
}

// GetDefaultLanguageTag returns the default language tag
func GetDefaultLanguageTag() types.LanguageTag {
	return types.LanguageTag(language.English)
}

// NewBundle creates a new i18n.Bundle
func NewBundle(language types.LanguageTag) *i18n.Bundle {
	if IsEmpty(language) {
		language = GetDefaultLanguageTag()
	}
	return i18n.NewBundle(types.ToLanguageTag(language))
}

// GenerateReasonCode generates a namespaced reason code as a string
func GenerateReasonCode(namespace string, code int) string {
	if IsEmpty(namespace) {
		return strconv.Itoa(code)
	}
	return fmt.Sprintf("%s-%d", strings.ToUpper(namespace), code)
}

// RecoverException recovers from panics and logs the stack trace
func RecoverException(panic any) {
	if panic != nil {
		Println(constant.ERROR, "Exception occured ", panic, "\n", string(debug.Stack()))
	}
}

// GetGoROOT returns the Go root directory
func GetGoROOT() string {
	return os.Getenv("GOROOT")
}

// JoinHostPort joins a host and a numeric port.
func JoinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func colorFor(mode types.LogMode) string {
	switch mode {
	case constant.INFO:
		return constant.GreenColor
	case constant.WARN:
		return constant.YellowColor
	case constant.ERROR, constant.FATAL:
		return constant.RedColor
	case constant.DEBUG:
		return constant.BlueColor
	default:
		return constant.ResetColor
	}
}

// Println prints a message with the specified log mode and color
func Println(mode types.LogMode, args ...any) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")

	fmt.Println(colorFor(mode) + "[" + timestamp + "] [" + mode.String() + "] " + fmt.Sprint(args...) + constant.ResetColor)
	if mode == constant.FATAL {
		os.Exit(1)
	}
}

// Printf prints a formatted message with the specified log mode and color
func Printf(mode types.LogMode, format string, args ...any) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")

	format = "[" + timestamp + "] [" + mode.String() + "] " + format
	fmt.Printf(colorFor(mode)+format+constant.ResetColor, args...)
	if mode == constant.FATAL {
		os.Exit(1)
	}
}

// TailCallerEncoder encodes the caller as the last n path segments plus the line.
func TailCallerEncoder(n int) zapcore.CallerEncoder {
	if n <= 0 {
		return zapcore.ShortCallerEncoder
	}
	return func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		path := caller.File

		sep := 0
		i := len(path) - 1
		for ; i >= 0; i-- {
			c := path[i]
			if c == '/' || c == '\\' {
				sep++
				if sep == n {
					break
				}
			}
		}
		start := i + 1
		if start < 0 || start > len(path) {
			start = 0
		}
		tail := path[start:]

		if strings.IndexByte(tail, '\\') >= 0 {
			tail = strings.ReplaceAll(tail, "\\", "/")
		}

		var sb strings.Builder
		sb.Grow(len(tail) + 12)
		sb.WriteString(tail)
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(caller.Line))

		enc.AppendString(sb.String())
	}
}

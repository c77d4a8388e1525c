package classify

import (
	"fmt"
	"strconv"
	"strings"

	"csreport/internal/domain"

	"github.com/tidwall/gjson"
)

// UnwrapEnvelope extracts value.result from a {"value":{"result":"..."}}
// envelope. Every failure is reported as a *domain.ParseError.
func UnwrapEnvelope(text string) (string, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") {
		return "", &domain.ParseError{Input: text, Reason: "not a JSON object"}
	}
	if !gjson.Valid(text) {
		return "", &domain.ParseError{Input: text, Reason: "malformed JSON"}
	}
	value := gjson.Get(text, "value")
	if !value.IsObject() {
		return "", &domain.ParseError{Input: text, Reason: "missing value object"}
	}
	result := value.Get("result")
	if !result.Exists() {
		return "", &domain.ParseError{Input: text, Reason: "missing value.result"}
	}
	if result.Type != gjson.String {
		return "", &domain.ParseError{Input: text, Reason: fmt.Sprintf("value.result is %s, not a string", result.Type)}
	}
	return strings.TrimSpace(result.String()), nil
}

// Text renders a cell value the way it is compared. Floats drop the
// exponent form so numeric identifiers keep all their digits.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

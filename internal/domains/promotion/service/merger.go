package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MergeTemplate substitutes {{input.<key>}} placeholders in a JSON template
// with user-supplied values. This is textual substitution and must run
// before the template is parsed as JSON: a placeholder inside a quoted
// string gets the raw value (quotes escaped), a bare placeholder gets a
// fully JSON-encoded value. Placeholders with no matching input are left
// untouched so evaluators treat the surrounding field as absent.
func MergeTemplate(template string, inputs map[string]interface{}) string {
	if template == "" || len(inputs) == 0 {
		return template
	}

	merged := template
	for key, value := range inputs {
		placeholder := "{{input." + key + "}}"

		quoted := `"` + placeholder + `"`
		if strings.Contains(merged, quoted) {
			raw := strings.ReplaceAll(rawValue(value), `"`, `\"`)
			merged = strings.ReplaceAll(merged, quoted, `"`+raw+`"`)
		}

		merged = strings.ReplaceAll(merged, placeholder, jsonValue(value))
	}
	return merged
}

// rawValue renders a value for use inside an existing quoted string.
func rawValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// jsonValue renders a value as a JSON literal for a bare placeholder.
func jsonValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return strconv.Quote(fmt.Sprintf("%v", v))
		}
		return string(encoded)
	}
}

package jobs

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrMalformedRecord is returned when a raw value cannot be normalized at all.
var ErrMalformedRecord = errors.New("malformed job record")

// aliases maps canonical keys to the provider keys that may carry them.
// The first present, non-empty alias wins.
var aliases = []struct {
	key  string
	from []string
}{
	{key: "id", from: []string{"id", "job_id"}},
	{key: "source", from: []string{"source", "provider"}},
	{key: "url", from: []string{"url", "job_url", "link"}},
	{key: "title", from: []string{"title", "job_title", "name"}},
	{key: "company", from: []string{"company", "company_name", "employer", "employer_name"}},
	{key: "location", from: []string{"location", "job_location", "city"}},
	{key: "description", from: []string{"description", "job_description", "summary"}},
	{key: "requirements", from: []string{"requirements", "qualifications"}},
	{key: "benefits", from: []string{"benefits"}},
	{key: "salary_min", from: []string{"salary_min", "min_salary", "salary_from"}},
	{key: "salary_max", from: []string{"salary_max", "max_salary", "salary_to"}},
	{key: "remote", from: []string{"remote", "remote_friendly", "is_remote", "work_from_home"}},
}

type rawRecord struct {
	ID           string `mapstructure:"id"`
	Source       string `mapstructure:"source"`
	URL          string `mapstructure:"url"`
	Title        string `mapstructure:"title"`
	Company      string `mapstructure:"company"`
	Location     string `mapstructure:"location"`
	Description  string `mapstructure:"description"`
	Requirements string `mapstructure:"requirements"`
	Benefits     string `mapstructure:"benefits"`
	SalaryMin    any    `mapstructure:"salary_min"`
	SalaryMax    any    `mapstructure:"salary_max"`
	Remote       any    `mapstructure:"remote"`
}

// Normalize converts a provider record into a Record with every field defined.
// Missing or null fields are not errors. Only values that are not key/value
// structures, or fields with an impossible shape, return ErrMalformedRecord.
func Normalize(raw any) (Record, error) {
	data, err := asMap(raw)
	if err != nil {
		return Record{}, err
	}

	var rr rawRecord
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &rr,
		WeaklyTypedInput: true,
		DecodeHook:       joinListHook,
	})
	if err != nil {
		return Record{}, fmt.Errorf("create decoder: %w", err)
	}

	if err := decoder.Decode(resolveAliases(data)); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	return Record{
		ID:           cleanText(rr.ID),
		Source:       cleanText(rr.Source),
		URL:          strings.TrimSpace(rr.URL),
		Title:        cleanText(rr.Title),
		Company:      cleanText(rr.Company),
		Location:     NormalizeLocation(rr.Location),
		Description:  cleanText(rr.Description),
		Requirements: cleanText(rr.Requirements),
		Benefits:     cleanText(rr.Benefits),
		SalaryMin:    parseAmount(rr.SalaryMin),
		SalaryMax:    parseAmount(rr.SalaryMax),
		Remote:       parseTristate(rr.Remote),
	}, nil
}

func asMap(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case map[string]any:
		return v, nil
	case map[string]string:
		out := make(map[string]any, len(v))
		for key, value := range v {
			out[key] = value
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, value := range v {
			s, ok := key.(string)
			if !ok {
				return nil, fmt.Errorf("%w: non-string key %v", ErrMalformedRecord, key)
			}
			out[s] = value
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected key-value record, got %T", ErrMalformedRecord, raw)
	}
}

func resolveAliases(data map[string]any) map[string]any {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lowered := make(map[string]any, len(data))
	for _, key := range keys {
		lower := strings.ToLower(strings.TrimSpace(key))
		if _, ok := lowered[lower]; !ok {
			lowered[lower] = data[key]
		}
	}

	out := make(map[string]any, len(aliases))
	for _, alias := range aliases {
		for _, from := range alias.from {
			value, ok := lowered[from]
			if !ok || value == nil {
				continue
			}
			if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
				continue
			}
			out[alias.key] = value
			break
		}
	}
	return out
}

// joinListHook flattens list values into a single space-separated string
// when the target field is text.
func joinListHook(from, to reflect.Kind, data any) (any, error) {
	if from != reflect.Slice || to != reflect.String {
		return data, nil
	}
	if b, ok := data.([]byte); ok {
		return string(b), nil
	}

	items := reflect.ValueOf(data)
	parts := make([]string, 0, items.Len())
	for i := 0; i < items.Len(); i++ {
		item := items.Index(i).Interface()
		switch v := item.(type) {
		case nil:
			continue
		case string:
			parts = append(parts, v)
		case float64, float32, int, int64, int32, bool:
			parts = append(parts, fmt.Sprint(v))
		default:
			return nil, fmt.Errorf("unsupported list item of type %T", item)
		}
	}
	return strings.Join(parts, " "), nil
}

// parseAmount returns an unknown amount for anything that is not a positive number.
// Providers use zero for undisclosed salaries, so zero is unknown as well.
func parseAmount(v any) Amount {
	var value float64
	switch val := v.(type) {
	case float64:
		value = val
	case float32:
		value = float64(val)
	case int:
		value = float64(val)
	case int64:
		value = float64(val)
	case int32:
		value = float64(val)
	case uint:
		value = float64(val)
	case uint64:
		value = float64(val)
	case string:
		parsed, ok := parseSalaryString(val)
		if !ok {
			return Unknown()
		}
		value = parsed
	default:
		return Unknown()
	}

	if value <= 0 {
		return Unknown()
	}
	return Known(value)
}

func parseSalaryString(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("$", "", ",", "", " ", "", "usd", "").Replace(s)
	if s == "" {
		return 0, false
	}

	multiplier := 1.0
	if strings.HasSuffix(s, "k") {
		multiplier = 1000
		s = strings.TrimSuffix(s, "k")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f * multiplier, true
}

func parseTristate(v any) Tristate {
	switch val := v.(type) {
	case bool:
		if val {
			return TristateYes
		}
		return TristateNo
	case float64:
		if val != 0 {
			return TristateYes
		}
		return TristateNo
	case int:
		if val != 0 {
			return TristateYes
		}
		return TristateNo
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes", "y", "1", "remote":
			return TristateYes
		case "false", "no", "n", "0", "onsite", "on-site":
			return TristateNo
		}
	}
	return TristateUnknown
}

func cleanText(s string) string {
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeLocation cleans a location string and drops repeated comma-separated parts.
func NormalizeLocation(loc string) string {
	loc = cleanText(loc)
	if loc == "" {
		return ""
	}

	seen := map[string]bool{}
	var out []string
	for _, part := range strings.Split(loc, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key := strings.ToLower(part)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, part)
	}
	return strings.Join(out, ", ")
}

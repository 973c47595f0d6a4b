package profile

import (
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	c := NewComparator(DefaultVolatileField)

	tests := []struct {
		name    string
		profile string
		active  string
		want    Status
	}{
		{"identical", `{"model":"A","x":1}`, `{"model":"A","x":1}`, StatusFullMatch},
		{"key order ignored", `{"x":1,"model":"A"}`, `{"model":"A","x":1}`, StatusFullMatch},
		{"whitespace ignored", "{\n  \"x\": 1\n}", `{"x":1}`, StatusFullMatch},
		{"volatile absent on both", `{"x":1}`, `{"x":1}`, StatusFullMatch},
		{"volatile differs", `{"model":"B","x":1}`, `{"model":"A","x":1}`, StatusPartialMatch},
		{"volatile only in profile", `{"model":"B","x":1}`, `{"x":1}`, StatusPartialMatch},
		{"volatile only in active", `{"x":1}`, `{"model":"A","x":1}`, StatusPartialMatch},
		{"other field differs", `{"model":"A","x":2}`, `{"model":"A","x":1}`, StatusNoMatch},
		{"both differ", `{"model":"B","x":2}`, `{"model":"A","x":1}`, StatusNoMatch},
		{"extra key in active", `{"x":1}`, `{"x":1,"y":2}`, StatusNoMatch},
		{"nested maps unordered", `{"env":{"a":"1","b":"2"}}`, `{"env":{"b":"2","a":"1"}}`, StatusFullMatch},
		{"arrays ordered", `{"allow":["a","b"]}`, `{"allow":["b","a"]}`, StatusNoMatch},
		{"nested volatile is compared", `{"sub":{"model":"A"}}`, `{"sub":{"model":"B"}}`, StatusNoMatch},
		{"integer and float differ", `{"x":1.0}`, `{"x":1}`, StatusNoMatch},
		{"floats by value", `{"x":1.0}`, `{"x":1.00}`, StatusFullMatch},
		{"exponent by value", `{"x":1e2}`, `{"x":100.0}`, StatusFullMatch},
		{"integers beyond 2^53", `{"x":9007199254740993}`, `{"x":9007199254740992}`, StatusNoMatch},
		{"integers beyond int64", `{"x":99999999999999999999}`, `{"x":99999999999999999999}`, StatusFullMatch},
		{"large integers differ", `{"x":99999999999999999999}`, `{"x":99999999999999999998}`, StatusNoMatch},
		{"nested integers", `{"a":[{"n":2}]}`, `{"a":[{"n":2.0}]}`, StatusNoMatch},
		{"float out of range", `{"x":1e400}`, `{"x":1}`, StatusReadError},
		{"profile invalid", `{"x":`, `{"x":1}`, StatusReadError},
		{"active invalid", `{"x":1}`, `nope`, StatusReadError},
		{"top level array", `[1]`, `[1]`, StatusReadError},
		{"null document", `null`, `{}`, StatusReadError},
		{"empty content", ``, `{}`, StatusReadError},
		{"trailing data", `{"x":1} {}`, `{"x":1}`, StatusReadError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify([]byte(tt.profile), []byte(tt.active)))
		})
	}
}

func TestClassify_SpecScenario(t *testing.T) {
	c := NewComparator(DefaultVolatileField)
	active := []byte(`{"model":"A","x":1}`)

	assert.Equal(t, StatusPartialMatch, c.Classify([]byte(`{"model":"B","x":1}`), active))
	assert.Equal(t, StatusNoMatch, c.Classify([]byte(`{"model":"A","x":2}`), active))
}

func TestClassify_NoVolatileField(t *testing.T) {
	c := NewComparator("")

	assert.Equal(t, StatusNoMatch, c.Classify([]byte(`{"model":"B"}`), []byte(`{"model":"A"}`)))
	assert.Equal(t, StatusFullMatch, c.Classify([]byte(`{"model":"A"}`), []byte(`{"model":"A"}`)))
}

func TestClassifyProfile_ErrorsBecomeReadError(t *testing.T) {
	c := NewComparator(DefaultVolatileField)
	active := Document{Parsed: map[string]any{"x": 1.0}}

	assert.Equal(t, StatusReadError, c.ClassifyProfile(Profile{Err: ErrDuplicateProfileName, Parsed: map[string]any{}}, active))
	assert.Equal(t, StatusReadError, c.ClassifyProfile(Profile{}, active))
	assert.Equal(t, StatusReadError, c.ClassifyProfile(Profile{Parsed: map[string]any{"x": 1.0}}, Document{}))
	assert.Equal(t, StatusFullMatch, c.ClassifyProfile(Profile{Parsed: map[string]any{"x": 1.0}}, active))
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "full-match", StatusFullMatch.String())
	assert.Equal(t, "partial-match", StatusPartialMatch.String())
	assert.Equal(t, "no-match", StatusNoMatch.String())
	assert.Equal(t, "read-error", StatusReadError.String())

	out, err := json.Marshal(map[string]Status{"s": StatusPartialMatch})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"s":"partial-match"}`, string(out))
}

// buildDoc renders a settings document from generated keys and values
func buildDoc(keys, values []string, model *string) []byte {
	doc := make(map[string]any)
	for i := 0; i < len(keys) && i < len(values); i++ {
		if keys[i] == "" || keys[i] == DefaultVolatileField {
			continue
		}
		doc[keys[i]] = values[i]
	}
	if model != nil {
		doc[DefaultVolatileField] = *model
	}
	data, _ := json.Marshal(doc)
	return data
}

func TestClassify_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	c := NewComparator(DefaultVolatileField)

	properties.Property("equal except volatile field is a partial match", prop.ForAll(
		func(keys, values []string, m1, m2 string) bool {
			if m1 == m2 {
				return true
			}
			return c.Classify(buildDoc(keys, values, &m1), buildDoc(keys, values, &m2)) == StatusPartialMatch
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("equal including volatile field is a full match", prop.ForAll(
		func(keys, values []string, m string) bool {
			return c.Classify(buildDoc(keys, values, &m), buildDoc(keys, values, &m)) == StatusFullMatch
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
		gen.AlphaString(),
	))

	properties.Property("a differing non-volatile field is never a match", prop.ForAll(
		func(keys, values []string, m1, m2 string, sameModel bool) bool {
			if sameModel {
				m2 = m1
			}
			profile := buildDoc(keys, values, &m1)
			var doc map[string]any
			_ = json.Unmarshal(buildDoc(keys, values, &m2), &doc)
			doc["__extra__"] = "differs"
			active, _ := json.Marshal(doc)
			return c.Classify(profile, active) == StatusNoMatch
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.Bool(),
	))

	properties.Property("classification is symmetric", prop.ForAll(
		func(k1, v1, k2, v2 []string, m1, m2 string) bool {
			a := buildDoc(k1, v1, &m1)
			b := buildDoc(k2, v2, &m2)
			return c.Classify(a, b) == c.Classify(b, a)
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package intake

import (
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/z5labs/userform/schema"
	"github.com/z5labs/userform/user"

	"github.com/stretchr/testify/assert"
)

func sampleValues() url.Values {
	return url.Values{
		FormFieldID:        {"3fa85f64-5717-4562-b3fc-2c963f66afa6"},
		FormFieldName:      {"John"},
		FormFieldEmail:     {"john@x.com"},
		FormFieldCreatedAt: {"2024-01-01T00:00:00Z"},
		FormFieldUpdatedAt: {"2024-01-02T00:00:00Z"},
	}
}

func TestFromValues(t *testing.T) {
	t.Run("will pass updatedAt through as a string", func(t *testing.T) {
		t.Run("if no mode is set", func(t *testing.T) {
			c := FromValues(sampleValues())

			if !assert.Equal(t, Candidate{
				user.FieldID:        "3fa85f64-5717-4562-b3fc-2c963f66afa6",
				user.FieldName:      "John",
				user.FieldEmail:     "john@x.com",
				user.FieldCreatedAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
				user.FieldUpdatedAt: "2024-01-02T00:00:00Z",
			}, c) {
				return
			}
		})
	})

	t.Run("will convert updatedAt", func(t *testing.T) {
		t.Run("if the mode is symmetric", func(t *testing.T) {
			c := FromValues(sampleValues(), WithMode(ModeSymmetric))

			if !assert.Equal(t, time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), c[user.FieldUpdatedAt]) {
				return
			}
		})
	})

	t.Run("will leave keys absent", func(t *testing.T) {
		t.Run("if form fields are missing", func(t *testing.T) {
			c := FromValues(url.Values{FormFieldName: {"John"}})

			if !assert.Equal(t, Candidate{
				user.FieldName:      "John",
				user.FieldCreatedAt: schema.InvalidDate{},
			}, c) {
				return
			}
		})
	})

	t.Run("will produce an invalid timestamp", func(t *testing.T) {
		t.Run("if createdAt is not a date", func(t *testing.T) {
			vals := sampleValues()
			vals.Set(FormFieldCreatedAt, "not-a-date")

			c := FromValues(vals)
			if !assert.Equal(t, schema.InvalidDate{Raw: "not-a-date"}, c[user.FieldCreatedAt]) {
				return
			}
		})

		t.Run("if updatedAt is missing and the mode is symmetric", func(t *testing.T) {
			vals := sampleValues()
			vals.Del(FormFieldUpdatedAt)

			c := FromValues(vals, WithMode(ModeSymmetric))
			if !assert.Equal(t, schema.InvalidDate{}, c[user.FieldUpdatedAt]) {
				return
			}
		})
	})
}

func TestFromValues_Schema(t *testing.T) {
	t.Run("will validate the sample form", func(t *testing.T) {
		t.Run("if the mode is symmetric", func(t *testing.T) {
			out, iss := user.Schema().Parse(FromValues(sampleValues(), WithMode(ModeSymmetric)))
			if !assert.Empty(t, iss) {
				return
			}

			u, err := user.FromRecord(out)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), u.CreatedAt) {
				return
			}
		})
	})

	t.Run("will reject the sample form with one issue at updatedAt", func(t *testing.T) {
		t.Run("if the mode is as is", func(t *testing.T) {
			_, iss := user.Schema().Parse(FromValues(sampleValues(), WithMode(ModeAsIs)))
			if !assert.Len(t, iss, 1) {
				return
			}
			if !assert.Equal(t, user.FieldUpdatedAt, iss[0].Path) {
				return
			}
			if !assert.Equal(t, schema.CodeInvalidType, iss[0].Code) {
				return
			}
		})
	})

	t.Run("will reject createdAt", func(t *testing.T) {
		t.Run("if it is not a date", func(t *testing.T) {
			vals := sampleValues()
			vals.Set(FormFieldCreatedAt, "not-a-date")

			_, iss := user.Schema().Parse(FromValues(vals, WithMode(ModeSymmetric)))
			if !assert.Len(t, iss, 1) {
				return
			}
			if !assert.Equal(t, user.FieldCreatedAt, iss[0].Path) {
				return
			}
			if !assert.Equal(t, schema.CodeInvalidDate, iss[0].Code) {
				return
			}
		})
	})

	t.Run("will report required fields", func(t *testing.T) {
		t.Run("if the form is empty", func(t *testing.T) {
			_, iss := user.Schema().Parse(FromValues(url.Values{}))

			if !assert.Len(t, iss, 5) {
				return
			}
			for _, field := range []string{user.FieldID, user.FieldName, user.FieldEmail, user.FieldUpdatedAt} {
				if !assert.Equal(t, schema.CodeRequired, iss.At(field)[0].Code) {
					return
				}
			}
			if !assert.Equal(t, schema.CodeInvalidDate, iss.At(user.FieldCreatedAt)[0].Code) {
				return
			}
		})
	})
}

func TestFromMap(t *testing.T) {
	t.Run("will build the same candidate as FromValues", func(t *testing.T) {
		t.Run("if the map holds the same fields", func(t *testing.T) {
			m := make(map[string]string)
			for k := range sampleValues() {
				m[k] = sampleValues().Get(k)
			}

			if !assert.Equal(t, FromValues(sampleValues(), WithMode(ModeSymmetric)), FromMap(m, WithMode(ModeSymmetric))) {
				return
			}
		})
	})
}

func TestParseTimestamp(t *testing.T) {
	testCases := []struct {
		Name  string
		Input string
		Want  time.Time
	}{
		{Name: "rfc3339", Input: "2024-01-01T00:00:00Z", Want: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "rfc3339 with fraction", Input: "2024-01-01T00:00:00.5Z", Want: time.Date(2024, time.January, 1, 0, 0, 0, 500000000, time.UTC)},
		{Name: "rfc3339 with offset", Input: "2024-01-01T02:00:00+02:00", Want: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "local date time", Input: "2024-01-01T12:30:00", Want: time.Date(2024, time.January, 1, 12, 30, 0, 0, time.UTC)},
		{Name: "datetime-local input", Input: "2024-01-01T12:30", Want: time.Date(2024, time.January, 1, 12, 30, 0, 0, time.UTC)},
		{Name: "date", Input: " 2024-01-01 ", Want: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "year one", Input: "0001-01-01T00:00:00Z", Want: time.Time{}},
	}

	for _, testCase := range testCases {
		t.Run("will parse "+testCase.Name, func(t *testing.T) {
			got, ok := ParseTimestamp(testCase.Input)
			if !assert.True(t, ok) {
				return
			}
			if !assert.True(t, testCase.Want.Equal(got), "want %s got %s", testCase.Want, got) {
				return
			}
		})
	}

	t.Run("will not parse", func(t *testing.T) {
		for _, input := range []string{"", "   ", "not-a-date"} {
			t.Run("if the input is "+strconv.Quote(input), func(t *testing.T) {
				_, ok := ParseTimestamp(input)
				if !assert.False(t, ok) {
					return
				}
			})
		}
	})
}

func TestFromValues_YearOne(t *testing.T) {
	t.Run("will validate createdAt", func(t *testing.T) {
		t.Run("if it is the first instant of year one", func(t *testing.T) {
			vals := sampleValues()
			vals.Set(FormFieldCreatedAt, "0001-01-01T00:00:00Z")

			out, iss := user.Schema().Parse(FromValues(vals, WithMode(ModeSymmetric)))
			if !assert.Empty(t, iss) {
				return
			}

			u, err := user.FromRecord(out)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.True(t, u.CreatedAt.IsZero()) {
				return
			}
		})
	})
}

func TestFromValues_InvalidUTF8(t *testing.T) {
	t.Run("will reject the name with an invalid_format issue", func(t *testing.T) {
		t.Run("if the form encodes bytes that are not utf-8", func(t *testing.T) {
			vals := sampleValues()
			decoded, err := url.ParseQuery(FormFieldName + "=%FF")
			if !assert.Nil(t, err) {
				return
			}
			vals.Set(FormFieldName, decoded.Get(FormFieldName))

			_, iss := user.Schema().Parse(FromValues(vals, WithMode(ModeSymmetric)))
			if !assert.Len(t, iss, 1) {
				return
			}
			if !assert.Equal(t, user.FieldName, iss[0].Path) {
				return
			}
			if !assert.Equal(t, schema.CodeInvalidFormat, iss[0].Code) {
				return
			}
		})
	})
}

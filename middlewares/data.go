package middlewares

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservations/utils"
)

const dataKey = "data"

// Abort pushes err onto the context for ErrorHandler and stops the chain.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func badRequest(c *gin.Context, format string, args ...interface{}) {
	Abort(c, utils.NewAPIError(http.StatusBadRequest, format, args...))
}

// BindData decodes the {"data": {...}} request envelope once and stores the
// inner object for the checks that follow. Numbers stay json.Number so
// integer checks can tell 2 from 2.5 and from "2".
func BindData() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(dataKey); exists {
			c.Next()
			return
		}

		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			badRequest(c, "could not read request body")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))

		var envelope map[string]interface{}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&envelope); err != nil {
			badRequest(c, "request body must be a JSON object")
			return
		}

		data, ok := envelope[dataKey].(map[string]interface{})
		if !ok {
			badRequest(c, "body must have a data property")
			return
		}

		c.Set(dataKey, data)
		c.Next()
	}
}

// Data returns the object stored by BindData.
func Data(c *gin.Context) map[string]interface{} {
	if v, ok := c.Get(dataKey); ok {
		if data, ok := v.(map[string]interface{}); ok {
			return data
		}
	}
	return map[string]interface{}{}
}

// HasProperties -> setiap field wajib ada dan tidak kosong (spasi saja dianggap kosong)
func HasProperties(properties ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data := Data(c)
		for _, property := range properties {
			value, ok := data[property]
			if text, isText := value.(string); isText && strings.TrimSpace(text) == "" {
				ok = false
			}
			if !ok || value == nil {
				badRequest(c, "A '%s' property is required.", property)
				return
			}
		}
		c.Next()
	}
}

// HasOnlyValidProperties -> tolak field yang tidak dikenal
func HasOnlyValidProperties(properties ...string) gin.HandlerFunc {
	valid := make(map[string]bool, len(properties))
	for _, p := range properties {
		valid[p] = true
	}
	return func(c *gin.Context) {
		var invalid []string
		for field := range Data(c) {
			if !valid[field] {
				invalid = append(invalid, field)
			}
		}
		if len(invalid) > 0 {
			sort.Strings(invalid)
			badRequest(c, "Invalid field(s): %s", strings.Join(invalid, ", "))
			return
		}
		c.Next()
	}
}

// positiveInt accepts only JSON integer literals greater than zero.
func positiveInt(value interface{}) (int, bool) {
	n, ok := value.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil || i <= 0 || i > int64(^uint32(0)>>1) {
		return 0, false
	}
	return int(i), true
}

// IntField reads an integer field already checked by the chain.
func IntField(data map[string]interface{}, field string) int {
	n, _ := positiveInt(data[field])
	return n
}

// StringField reads a string field, trimmed.
func StringField(data map[string]interface{}, field string) string {
	s, _ := data[field].(string)
	return strings.TrimSpace(s)
}

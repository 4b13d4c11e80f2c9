package handlers

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	TotalCountHeader = "X-Total-Count"
)

// columnName limits sort and filter keys to plain identifiers. Anything
// else is dropped rather than interpolated into SQL.
var columnName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Query carries the react-admin style list parameters: sort is a JSON
// pair like ["name","ASC"], range a JSON pair of zero-based inclusive
// offsets like [0,24], filter a JSON object of column equality matches.
type Query struct {
	Sort   string `form:"sort"`
	Filter string `form:"filter"`
	Range  string `form:"range"`
}

func (q *Query) GetSort() (string, error) {
	var parts []string
	if err := json.Unmarshal([]byte(q.Sort), &parts); err != nil {
		return "", err
	}
	if len(parts) != 2 {
		return "", fmt.Errorf("expected [column, direction]")
	}
	if !columnName.MatchString(parts[0]) {
		return "", fmt.Errorf("invalid sort column")
	}
	direction := strings.ToUpper(parts[1])
	if direction != "ASC" && direction != "DESC" {
		return "", fmt.Errorf("invalid sort direction")
	}
	return parts[0] + " " + direction, nil
}

func (q *Query) GetRange() (int, int, error) {
	var parts []int
	if err := json.Unmarshal([]byte(q.Range), &parts); err != nil {
		return 0, 0, err
	}
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected [start, end]")
	}
	start := parts[0]
	end := parts[1]
	pageSize := end - start + 1
	if start < 0 || pageSize < 1 {
		return 0, 0, fmt.Errorf("invalid range")
	}
	return pageSize, start, nil
}

func (q *Query) GetFilter() (map[string]interface{}, error) {
	var parts map[string]interface{}
	if err := json.Unmarshal([]byte(q.Filter), &parts); err != nil {
		return nil, err
	}
	for key := range parts {
		if !columnName.MatchString(key) {
			return nil, fmt.Errorf("invalid filter column")
		}
	}
	return parts, nil
}

// FilterAndPaginate is a gorm scope that applies the caller supplied
// sort, filter and range parameters to a collection read. Unparsable
// parameters fall back to the defaults instead of failing the request.
// When a range is given the pre-pagination total is exposed through the
// X-Total-Count header.
func FilterAndPaginate(model interface{}, c *gin.Context, defaultOrderBy string) func(db *gorm.DB) *gorm.DB {
	var query Query
	_ = c.ShouldBindQuery(&query)
	return func(db *gorm.DB) *gorm.DB {

		if order, err := query.GetSort(); err == nil {
			db = db.Order(order)
		} else if defaultOrderBy != "" {
			db = db.Order(defaultOrderBy)
		}

		if filter, err := query.GetFilter(); err == nil {
			db = db.Where(filter)
		}

		if pageSize, offset, err := query.GetRange(); err == nil {
			var totalCount int64
			countSession := db.Session(&gorm.Session{Initialized: true})
			res := countSession.Model(model).Count(&totalCount)
			if res.Error != nil {
				db.Error = res.Error
				return db
			}
			c.Header("Access-Control-Expose-Headers", TotalCountHeader)
			c.Header(TotalCountHeader, strconv.Itoa(int(totalCount)))
			db = db.Offset(offset).Limit(pageSize)
		}
		return db
	}
}

// uintParam parses a numeric path parameter. The second return is false
// when the value is not a positive integer.
func uintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}

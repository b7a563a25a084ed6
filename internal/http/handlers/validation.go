package handlers

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/rogerio-castellano/inventory-app/internal/repo"
)

// queryParser collects every malformed parameter instead of stopping at the
// first one.
type queryParser struct {
	values url.Values
	errs   repo.ValidationErrors
}

func newQueryParser(values url.Values) *queryParser {
	return &queryParser{values: values}
}

func (p *queryParser) int64Ptr(key string) *int64 {
	s := strings.TrimSpace(p.values.Get(key))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		p.errs = append(p.errs, repo.ValidationError{Field: key, Reason: "must be an integer"})
		return nil
	}
	return &v
}

func (p *queryParser) intParam(key string) int {
	s := strings.TrimSpace(p.values.Get(key))
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		p.errs = append(p.errs, repo.ValidationError{Field: key, Reason: "must be an integer"})
		return 0
	}
	return v
}

func (p *queryParser) boolParam(key string) bool {
	s := strings.TrimSpace(p.values.Get(key))
	if s == "" {
		return false
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		p.errs = append(p.errs, repo.ValidationError{Field: key, Reason: "must be true or false"})
		return false
	}
	return v
}

func (p *queryParser) list(key string) []string {
	var out []string
	for _, raw := range p.values[key] {
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

func (p *queryParser) filter() repo.Filter {
	return repo.Filter{
		Name:     strings.TrimSpace(p.values.Get("name")),
		Supplier: strings.TrimSpace(p.values.Get("supplier")),
		MinPrice: p.int64Ptr("minPrice"),
		MaxPrice: p.int64Ptr("maxPrice"),
		MinQty:   p.int64Ptr("minQty"),
		MaxQty:   p.int64Ptr("maxQty"),
	}
}

// sort reads "sort=name,-price"; a leading '-' sorts descending.
func (p *queryParser) sort() []repo.Order {
	var orders []repo.Order
	for _, item := range p.list("sort") {
		desc := strings.HasPrefix(item, "-")
		orders = append(orders, repo.Order{Field: strings.TrimPrefix(item, "-"), Desc: desc})
	}
	return orders
}

func (p *queryParser) query() repo.Query {
	return repo.Query{
		Fields:  p.list("fields"),
		Filter:  p.filter(),
		OrderBy: p.sort(),
		Limit:   p.intParam("limit"),
		Offset:  p.intParam("offset"),
	}
}

// selector turns all=true or a non-empty filter into a bulk selector.
func (p *queryParser) selector() repo.Selector {
	if p.boolParam("all") {
		return repo.All()
	}
	return repo.Where(p.filter())
}

func (p *queryParser) err() error {
	if len(p.errs) == 0 {
		return nil
	}
	return p.errs
}

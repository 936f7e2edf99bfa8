package hypermedia

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrNullValue is returned by the typed accessors when a field is present
// but holds JSON null.
var ErrNullValue = errors.New("field value is null")

// Link is a named relation to another resource.
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// Datum is one name/value pair of an item. Numbers decode as json.Number.
type Datum struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Item is a single resource inside a collection.
type Item struct {
	Href  string  `json:"href"`
	Data  []Datum `json:"data"`
	Links []Link  `json:"links"`
}

// Collection is the body of a Collection+JSON document.
type Collection struct {
	Version string `json:"version"`
	Href    string `json:"href"`
	Links   []Link `json:"links"`
	Items   []Item `json:"items"`
}

type document struct {
	Collection Collection `json:"collection"`
}

// LinkNotFoundError is returned when no link carries the requested relation.
type LinkNotFoundError struct {
	Rel string
}

func (e *LinkNotFoundError) Error() string {
	return fmt.Sprintf("link with rel %q not found", e.Rel)
}

// FieldNotFoundError is returned when an item has no datum with the requested name.
type FieldNotFoundError struct {
	Name string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field %q not found", e.Name)
}

// FindLink returns the href of the first link whose relation equals rel.
func FindLink(links []Link, rel string) (string, error) {
	for _, l := range links {
		if l.Rel == rel {
			return l.Href, nil
		}
	}
	return "", &LinkNotFoundError{Rel: rel}
}

// Link returns the href of the collection-level link named rel.
func (c *Collection) Link(rel string) (string, error) {
	return FindLink(c.Links, rel)
}

// Link returns the href of the item's link named rel.
func (it Item) Link(rel string) (string, error) {
	return FindLink(it.Links, rel)
}

// Field returns the raw value of the datum named name.
func (it Item) Field(name string) (any, error) {
	for _, d := range it.Data {
		if d.Name == name {
			return d.Value, nil
		}
	}
	return nil, &FieldNotFoundError{Name: name}
}

// String returns the datum named name rendered as a string. Numbers keep
// their literal JSON form, so IDs never pass through a float.
func (it Item) String(name string) (string, error) {
	v, err := it.Field(name)
	if err != nil {
		return "", err
	}
	switch v := v.(type) {
	case nil:
		return "", fmt.Errorf("%s: %w", name, ErrNullValue)
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("%s: unexpected value type %T", name, v)
	}
}

// Int returns the datum named name as an integer.
func (it Item) Int(name string) (int64, error) {
	v, err := it.Field(name)
	if err != nil {
		return 0, err
	}
	switch v := v.(type) {
	case nil:
		return 0, fmt.Errorf("%s: %w", name, ErrNullValue)
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("%s: unexpected value type %T", name, v)
	}
}

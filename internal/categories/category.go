// Package categories implements the routing rule registry. A category pairs
// a unique name with keyword hints and the mailbox that documents assigned to
// it are routed to.
package categories

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// OtherName is the display name of the reserved fallback category.
const OtherName = "Other"

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Category is a stored routing rule.
type Category struct {
	Name          string   `json:"name"`
	Keywords      []string `json:"keywords"`
	ReceiverEmail string   `json:"receiver_email"`
}

func (c Category) clone() Category {
	c.Keywords = slices.Clone(c.Keywords)
	return c
}

// Keywords is raw keyword input. It decodes from either a JSON array of
// strings or a single comma-separated string.
type Keywords []string

func (k *Keywords) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*k = Keywords{s}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("keywords must be a string or an array of strings")
	}
	*k = list
	return nil
}

// Input carries the user-supplied fields for Add and Edit.
type Input struct {
	Name          string   `json:"name"`
	Keywords      Keywords `json:"keywords"`
	ReceiverEmail string   `json:"receiver_email"`
}

// ValidEmail reports whether s has the local@domain.tld shape required for
// receiver addresses. Surrounding whitespace is ignored.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// SplitKeywords splits each entry on commas, trims every token and drops
// empty ones. Order is preserved.
func SplitKeywords(raw ...string) []string {
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		for token := range strings.SplitSeq(entry, ",") {
			if token = strings.TrimSpace(token); token != "" {
				out = append(out, token)
			}
		}
	}
	return out
}

func (in Input) normalize() (Category, error) {
	c := Category{
		Name:          strings.TrimSpace(in.Name),
		Keywords:      SplitKeywords(in.Keywords...),
		ReceiverEmail: strings.TrimSpace(in.ReceiverEmail),
	}

	switch {
	case c.Name == "":
		return c, fmt.Errorf("%w: category name is required", ErrValidation)
	case len(c.Keywords) == 0:
		return c, fmt.Errorf("%w: at least one keyword is required", ErrValidation)
	case c.ReceiverEmail == "":
		return c, fmt.Errorf("%w: receiver email is required", ErrValidation)
	case !emailPattern.MatchString(c.ReceiverEmail):
		return c, fmt.Errorf("%w: receiver email %q is not a valid address", ErrValidation, c.ReceiverEmail)
	case strings.EqualFold(c.Name, OtherName):
		return c, fmt.Errorf("%w: %q is reserved", ErrValidation, OtherName)
	}
	return c, nil
}

// Ref is a row's reference to a category: either the reserved Other
// fallback or a category by name. The zero value is Other.
type Ref struct {
	name string
}

// Other is the fallback reference used when no category applies.
var Other = Ref{}

// ParseRef converts a category name to a Ref. Blank input and any casing of
// "Other" yield the Other sentinel.
func ParseRef(name string) Ref {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, OtherName) {
		return Other
	}
	return Ref{name: name}
}

// IsOther reports whether r is the Other sentinel.
func (r Ref) IsOther() bool {
	return r.name == ""
}

// Name returns the referenced category name, or OtherName for the sentinel.
func (r Ref) Name() string {
	if r.IsOther() {
		return OtherName
	}
	return r.name
}

func (r Ref) String() string {
	return r.Name()
}

func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Name())
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("category must be a string")
	}
	*r = ParseRef(s)
	return nil
}

// Snapshot is an immutable point-in-time copy of the registry.
type Snapshot struct {
	categories []Category
	byName     map[string]int
}

// NewSnapshot copies categories into a Snapshot.
func NewSnapshot(categories []Category) Snapshot {
	s := Snapshot{
		categories: make([]Category, len(categories)),
		byName:     make(map[string]int, len(categories)),
	}
	for i, c := range categories {
		s.categories[i] = c.clone()
		s.byName[c.Name] = i
	}
	return s
}

// Lookup finds a category by exact name.
func (s Snapshot) Lookup(name string) (Category, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Category{}, false
	}
	return s.categories[i].clone(), true
}

// Categories returns a copy of the snapshot contents in registry order.
func (s Snapshot) Categories() []Category {
	out := make([]Category, len(s.categories))
	for i, c := range s.categories {
		out[i] = c.clone()
	}
	return out
}

// Len returns the number of categories in the snapshot.
func (s Snapshot) Len() int {
	return len(s.categories)
}

package model

// Side identifies which half of an account a Way holds.
type Side int

const (
	SideUnknown Side = iota
	SideResources
	SideUses
)

func (s Side) String() string {
	switch s {
	case SideResources:
		return "resources"
	case SideUses:
		return "uses"
	default:
		return "unknown"
	}
}

// Default sheet labels for the two sides of an account.
const (
	ResourcesLabel = "Ресурсы"
	UsesLabel      = "Использование"
)

// Account is one economic sector in the report: a Resources side and a Uses side.
type Account struct {
	Type      string `json:"type" yaml:"type"`
	Uses      *Way   `json:"uses" yaml:"uses"`
	Resources *Way   `json:"resources" yaml:"resources"`
}

// NewAccount creates an Account with empty sides labelled resources and uses.
func NewAccount(accountType, resources, uses string) *Account {
	return &Account{
		Type:      accountType,
		Resources: NewWay(resources, SideResources),
		Uses:      NewWay(uses, SideUses),
	}
}

// Way is one side of an Account holding its top-level records.
type Way struct {
	Name    string
	Side    Side
	Records []*Record
}

// NewWay creates an empty Way.
func NewWay(name string, side Side) *Way {
	return &Way{Name: name, Side: side, Records: []*Record{}}
}

// Append adds r as a new top-level record.
func (w *Way) Append(r *Record) {
	w.Records = append(w.Records, r)
}

// Last returns the most recently added top-level record, or nil.
func (w *Way) Last() *Record {
	if len(w.Records) == 0 {
		return nil
	}
	return w.Records[len(w.Records)-1]
}

// Len returns the number of records in the Way, children included.
func (w *Way) Len() int {
	n := 0
	_ = Walk(w.Records, func(*Record, int) error {
		n++
		return nil
	})
	return n
}

// MarshalJSON encodes a Way as the list of its top-level records.
func (w *Way) MarshalJSON() ([]byte, error) {
	return marshalRecords(w.Records)
}

// MarshalYAML encodes a Way as the list of its top-level records.
func (w *Way) MarshalYAML() (any, error) {
	return w.Records, nil
}

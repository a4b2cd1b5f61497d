package model

import "encoding/json"

// Document is the parsed report: the year axis and the accounts in sheet order.
type Document struct {
	Years    []int
	Accounts []*Account
}

// NewDocument returns an empty Document.
func NewDocument() *Document {
	return &Document{Accounts: []*Account{}}
}

// Current returns the account being filled, or nil before the first title row.
func (d *Document) Current() *Account {
	if len(d.Accounts) == 0 {
		return nil
	}
	return d.Accounts[len(d.Accounts)-1]
}

// RecordCount returns the number of records across all accounts.
func (d *Document) RecordCount() int {
	n := 0
	for _, a := range d.Accounts {
		n += a.Resources.Len() + a.Uses.Len()
	}
	return n
}

// MarshalJSON encodes the Document as the list of its accounts.
func (d *Document) MarshalJSON() ([]byte, error) {
	accounts := d.Accounts
	if accounts == nil {
		accounts = []*Account{}
	}
	return json.Marshal(accounts)
}

// MarshalYAML encodes the Document as the list of its accounts.
func (d *Document) MarshalYAML() (any, error) {
	if d.Accounts == nil {
		return []*Account{}, nil
	}
	return d.Accounts, nil
}

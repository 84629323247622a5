// Package catalog holds the fixed table of support categories and their
// question scripts. A Catalog is built once at startup and passed explicitly
// to the components that need it.
package catalog

import (
	"fmt"
)

// Category keys
const (
	Authentication = "authentication"
	Billing        = "billing"
	Technical      = "technical"
	Account        = "account"
	General        = "general"
)

// Category describes one classification bucket and its intake script.
type Category struct {
	Key            string   `json:"key"`
	Name           string   `json:"name"`
	RequiredFields []string `json:"required_fields"`
	Questions      []string `json:"questions"`
	Description    string   `json:"-"` // shown to the LLM in the classification prompt
	Team           string   `json:"team"`
}

// Catalog is an immutable set of categories. Lookups return copies so callers
// cannot mutate the shared table.
type Catalog struct {
	byKey map[string]Category
	order []string
}

// New builds a catalog from the given categories. Every category needs a key,
// a name and at least one question; keys must be unique.
func New(categories ...Category) (*Catalog, error) {
	c := &Catalog{byKey: make(map[string]Category, len(categories))}
	for _, cat := range categories {
		if cat.Key == "" {
			return nil, fmt.Errorf("category with empty key")
		}
		if cat.Name == "" {
			return nil, fmt.Errorf("category %q has no display name", cat.Key)
		}
		if len(cat.Questions) == 0 {
			return nil, fmt.Errorf("category %q has no questions", cat.Key)
		}
		if _, dup := c.byKey[cat.Key]; dup {
			return nil, fmt.Errorf("duplicate category %q", cat.Key)
		}
		c.byKey[cat.Key] = clone(cat)
		c.order = append(c.order, cat.Key)
	}
	return c, nil
}

// Default returns the built-in five-category catalog.
func Default() *Catalog {
	c, err := New(defaultCategories()...)
	if err != nil {
		panic(err) // static table
	}
	return c
}

// Get returns the category for key.
func (c *Catalog) Get(key string) (Category, bool) {
	cat, ok := c.byKey[key]
	if !ok {
		return Category{}, false
	}
	return clone(cat), true
}

// Has reports whether key is a known category.
func (c *Catalog) Has(key string) bool {
	_, ok := c.byKey[key]
	return ok
}

// Keys returns category keys in catalog order.
func (c *Catalog) Keys() []string {
	return append([]string(nil), c.order...)
}

// All returns every category in catalog order.
func (c *Catalog) All() []Category {
	out := make([]Category, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, clone(c.byKey[k]))
	}
	return out
}

// CompletionMessage is the bot reply sent once every question has been answered.
func (c Category) CompletionMessage() string {
	return fmt.Sprintf("Thank you! I have all the information needed. Your %s request has been categorized and will be routed to the appropriate team.", c.Name)
}

func clone(cat Category) Category {
	cat.RequiredFields = append([]string(nil), cat.RequiredFields...)
	cat.Questions = append([]string(nil), cat.Questions...)
	return cat
}

func defaultCategories() []Category {
	return []Category{
		{
			Key:            Authentication,
			Name:           "Authentication",
			RequiredFields: []string{"device", "browser", "error_message"},
			Questions: []string{
				"What device are you using? (Desktop, Mobile, Tablet)",
				"What browser are you using?",
				"Are you getting any specific error messages?",
			},
			Description: "login, password, sign-in issues",
			Team:        "identity",
		},
		{
			Key:            Billing,
			Name:           "Billing",
			RequiredFields: []string{"email", "charge_date", "amount"},
			Questions: []string{
				"What is your account email?",
				"What is the approximate date of the charge?",
				"What is the amount in question?",
			},
			Description: "payments, charges, invoices, subscription issues",
			Team:        "billing",
		},
		{
			Key:            Technical,
			Name:           "Technical Issue",
			RequiredFields: []string{"browser", "issue_start_date", "steps_to_reproduce"},
			Questions: []string{
				"What browser are you using?",
				"When did this issue start?",
				"Can you describe the exact steps that led to this problem?",
			},
			Description: "bugs, errors, app not working, crashes",
			Team:        "engineering",
		},
		{
			Key:            Account,
			Name:           "Account Management",
			RequiredFields: []string{"email", "specific_setting", "tried_logout"},
			Questions: []string{
				"What is your account email?",
				"What specific setting are you trying to change?",
				"Have you tried logging out and back in?",
			},
			Description: "profile settings, account management, personal info",
			Team:        "account-services",
		},
		{
			Key:            General,
			Name:           "General Inquiry",
			RequiredFields: []string{"more_details"},
			Questions: []string{
				"Can you provide more details about your issue?",
				"What would you like us to help you with specifically?",
			},
			Description: "everything else",
			Team:        "support",
		},
	}
}

package remote

import (
	"fmt"
	"time"

	"github.com/alexanderramin/hearth/internal/docstore"
	"github.com/alexanderramin/hearth/internal/domain"
)

// budgetDoc is the shared shape of a ledger entry: one signed amount
// instead of magnitude plus type.
type budgetDoc struct {
	Title        string `json:"title"`
	Memo         string `json:"memo,omitempty"`
	Amount       int64  `json:"amount"`
	Date         string `json:"date"`
	Category     string `json:"category,omitempty"`
	Account      string `json:"account,omitempty"`
	SavingsID    string `json:"savingsId,omitempty"`
	PaymentMonth string `json:"paymentMonth,omitempty"`
	AuthorID     string `json:"authorId,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

func budgetFields(e domain.BudgetEntry) (docstore.Fields, error) {
	d := budgetDoc{
		Title:        e.Title,
		Memo:         e.Memo,
		Amount:       e.Signed(),
		Date:         e.Date.Format(domain.DateLayout),
		Category:     e.Category,
		Account:      e.Account,
		SavingsID:    e.SavingsID,
		PaymentMonth: e.PaymentMonth,
		AuthorID:     e.AuthorID,
	}
	if !e.CreatedAt.IsZero() {
		d.CreatedAt = e.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return docstore.Encode(d)
}

func budgetFromDoc(doc docstore.Doc) (domain.BudgetEntry, error) {
	var d budgetDoc
	if err := doc.Fields.Decode(&d); err != nil {
		return domain.BudgetEntry{}, err
	}
	date, err := domain.ParseDate(d.Date)
	if err != nil {
		return domain.BudgetEntry{}, fmt.Errorf("budget %s: %w", doc.ID, err)
	}
	e := domain.BudgetEntry{
		ID:           doc.ID,
		Title:        d.Title,
		Memo:         d.Memo,
		Date:         date,
		Category:     d.Category,
		Account:      d.Account,
		SavingsID:    d.SavingsID,
		PaymentMonth: d.PaymentMonth,
		AuthorID:     d.AuthorID,
		CreatedAt:    parseTimestamp(d.CreatedAt),
	}
	e.FromSigned(d.Amount)
	return e, nil
}

// todoFields encodes the flat record. Fields of schedule kinds other than
// the active one are never present.
func todoFields(t domain.Todo) (docstore.Fields, error) {
	return docstore.Encode(t.Record())
}

func todoFromDoc(doc docstore.Doc) (domain.Todo, error) {
	var r domain.TodoRecord
	if err := doc.Fields.Decode(&r); err != nil {
		return domain.Todo{}, err
	}
	r.ID = doc.ID
	return domain.TodoFromRecord(r)
}

func accountFields(a domain.Account) (docstore.Fields, error) {
	return docstore.Encode(a)
}

func accountFromDoc(doc docstore.Doc) (domain.Account, error) {
	var a domain.Account
	if err := doc.Fields.Decode(&a); err != nil {
		return domain.Account{}, err
	}
	if a.Name == "" {
		a.Name = doc.ID
	}
	return a, nil
}

func categoryFields(c domain.CategorySettings) (docstore.Fields, error) {
	c = c.Clone()
	c.Normalize()
	return docstore.Encode(c)
}

func categoryFromDoc(doc docstore.Doc) (domain.CategorySettings, error) {
	var c domain.CategorySettings
	if err := doc.Fields.Decode(&c); err != nil {
		return domain.CategorySettings{}, err
	}
	c.Normalize()
	return c, nil
}

func groupFields(g domain.Group) (docstore.Fields, error) {
	if g.Members == nil {
		g.Members = []string{}
	}
	return docstore.Encode(g)
}

func groupFromDoc(doc docstore.Doc) (domain.Group, error) {
	var g domain.Group
	if err := doc.Fields.Decode(&g); err != nil {
		return domain.Group{}, err
	}
	if doc.ID != GroupDocID || g.Code == "" {
		return domain.Group{}, fmt.Errorf("unexpected group document %q", doc.ID)
	}
	return g, nil
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

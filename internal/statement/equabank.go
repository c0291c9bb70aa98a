package statement

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"wallit/internal/money"

	"github.com/shopspring/decimal"
)

// Equabank parses ISO 20022 camt.053 XML statements. After all entries are
// read, the running sum is checked against the statement's declared net
// total; a mismatch rejects the whole file.
type Equabank struct{}

const (
	camtNamespace  = "urn:iso:std:iso:20022:tech:xsd:camt.053.001.06"
	camtDateLayout = "2006-01-02+15:04"
)

func (Equabank) Parse(r io.Reader) ([]ParsedTransaction, error) {
	root, err := parseTree(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if root.space != camtNamespace {
		return nil, fmt.Errorf("%w: unexpected document namespace %q", ErrParse, root.space)
	}

	var transactions []ParsedTransaction
	sum := decimal.Zero
	for _, entry := range root.descendants("Ntry") {
		transaction, err := parseEntry(entry)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
		sum = sum.Add(transaction.BaseAmount)
	}

	if err := validateSum(root, sum); err != nil {
		return nil, err
	}
	return transactions, nil
}

func parseEntry(entry *xmlNode) (ParsedTransaction, error) {
	var transaction ParsedTransaction

	if parties := entry.descendant("RltdPties"); parties != nil {
		if name := parties.descendant("Nm"); name != nil {
			transaction.Info = optional(strings.ToUpper(name.text()))
		}
	}
	// The town may sit outside RltdPties, so the address is searched from
	// the entry itself.
	if address := entry.descendant("PstlAdr"); address != nil {
		if town := address.child("TwnNm"); town != nil {
			transaction.Place = optional(strings.ToUpper(town.text()))
		}
	}
	if title := entry.descendant("Ustrd"); title != nil {
		transaction.Title = optional(strings.ToUpper(title.text()))
	}

	booking := entry.descendant("BookgDt")
	if booking == nil || booking.child("Dt") == nil {
		return transaction, fmt.Errorf("%w: entry is missing a booking date", ErrParse)
	}
	date, err := time.Parse(camtDateLayout, booking.child("Dt").text())
	if err != nil {
		return transaction, fmt.Errorf("%w: bad booking date %q", ErrParse, booking.child("Dt").text())
	}
	transaction.TransactionDate = date

	amountNode := entry.child("Amt")
	if amountNode == nil || amountNode.attr("Ccy") == "" {
		return transaction, fmt.Errorf("%w: entry is missing amount or currency", ErrParse)
	}
	amount, err := money.Parse(amountNode.text())
	if err != nil {
		return transaction, fmt.Errorf("%w: bad amount %q", ErrParse, amountNode.text())
	}
	transaction.BaseCurrency = amountNode.attr("Ccy")

	indicator := entry.child("CdtDbtInd")
	if indicator == nil {
		return transaction, fmt.Errorf("%w: entry is missing credit/debit indicator", ErrParse)
	}
	switch strings.ToUpper(indicator.text()) {
	case "DBIT":
		transaction.BaseAmount = amount.Neg()
	case "CRDT":
		transaction.BaseAmount = amount
	default:
		return transaction, fmt.Errorf("%w: unknown credit/debit indicator %q", ErrParse, indicator.text())
	}
	return transaction, nil
}

// validateSum compares the parsed running sum with the declared net-entries
// total. The declared figure is a magnitude whose sign rides on the
// indicator; a CRDT indicator inverts it for comparison with the signed sum.
func validateSum(root *xmlNode, sum decimal.Decimal) error {
	totals := root.descendant("TtlNtries")
	if totals == nil {
		return fmt.Errorf("%w: statement is missing net entries total", ErrParse)
	}
	net := totals.child("TtlNetNtry")
	if net == nil || net.child("Amt") == nil || net.child("CdtDbtInd") == nil {
		return fmt.Errorf("%w: statement is missing net entries total", ErrParse)
	}

	declared, err := money.Parse(net.child("Amt").text())
	if err != nil {
		return fmt.Errorf("%w: bad declared total %q", ErrParse, net.child("Amt").text())
	}
	if strings.ToUpper(net.child("CdtDbtInd").text()) == "CRDT" {
		declared = declared.Neg()
	}

	if !money.Round2(sum).Equal(declared) {
		return fmt.Errorf("%w: declared total %s, parsed total %s", ErrValidation, declared, money.Round2(sum))
	}
	return nil
}

// xmlNode is a minimal element tree. camt.053 nests interesting fields at
// varying depths, so entries are searched by descendant rather than mapped
// onto rigid structs. Unknown elements simply never get looked up.
type xmlNode struct {
	name     string
	space    string
	attrs    []xml.Attr
	chardata strings.Builder
	children []*xmlNode
}

func parseTree(r io.Reader) (*xmlNode, error) {
	decoder := xml.NewDecoder(r)
	var root *xmlNode
	var stack []*xmlNode
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			node := &xmlNode{name: t.Name.Local, space: t.Name.Space, attrs: t.Attr}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple document roots")
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].chardata.Write(t)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("empty document")
	}
	return root, nil
}

func (n *xmlNode) text() string {
	return strings.TrimSpace(n.chardata.String())
}

func (n *xmlNode) attr(name string) string {
	for _, attr := range n.attrs {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}

func (n *xmlNode) child(name string) *xmlNode {
	for _, child := range n.children {
		if child.name == name {
			return child
		}
	}
	return nil
}

// descendant returns the first element named name in document order, at any
// depth below n.
func (n *xmlNode) descendant(name string) *xmlNode {
	for _, child := range n.children {
		if child.name == name {
			return child
		}
		if found := child.descendant(name); found != nil {
			return found
		}
	}
	return nil
}

func (n *xmlNode) descendants(name string) []*xmlNode {
	var found []*xmlNode
	for _, child := range n.children {
		if child.name == name {
			found = append(found, child)
			continue
		}
		found = append(found, child.descendants(name)...)
	}
	return found
}

package params

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/Dallionking/quantdesk/internal/schema"
)

// Attachment is a user-supplied price file. It is not modified after capture.
type Attachment struct {
	Name string
	Data []byte
}

// LoadAttachment reads a CSV from disk.
func LoadAttachment(path string) (*Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading attachment: %w", err)
	}
	return &Attachment{Name: filepath.Base(path), Data: data}, nil
}

// CSVSummary describes the rows found in an attachment.
type CSVSummary struct {
	Rows      int
	FirstDate string
	LastDate  string
	LastClose float64
}

type priceRow struct {
	Date  string `csv:"date"`
	Close string `csv:"close"`
}

// Inspect decodes the attachment and checks it has a numeric close column.
// Problems are reported as *schema.ValidationError on the file field.
func (a *Attachment) Inspect() (CSVSummary, error) {
	invalid := func(format string, args ...any) error {
		return &schema.ValidationError{Field: schema.FieldFile, Message: fmt.Sprintf(format, args...)}
	}

	var rows []priceRow
	if err := gocsv.UnmarshalBytes(a.Data, &rows); err != nil {
		return CSVSummary{}, &schema.ValidationError{
			Field:   schema.FieldFile,
			Message: fmt.Sprintf("%s is not a readable CSV", a.Name),
			Err:     err,
		}
	}
	if len(rows) == 0 {
		return CSVSummary{}, invalid("%s has no rows", a.Name)
	}

	var sum CSVSummary
	blank := 0
	for i, r := range rows {
		c := strings.TrimSpace(r.Close)
		if c == "" {
			blank++
			continue
		}
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			// header is line 1
			return CSVSummary{}, invalid("%s line %d: close %q is not a number", a.Name, i+2, r.Close)
		}
		sum.LastClose = v
	}
	if blank == len(rows) {
		return CSVSummary{}, invalid("%s has no close column", a.Name)
	}

	sum.Rows = len(rows)
	sum.FirstDate = rows[0].Date
	sum.LastDate = rows[len(rows)-1].Date
	return sum, nil
}
